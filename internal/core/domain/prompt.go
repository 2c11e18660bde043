package domain

// Built-in prompt templates, used when no user override exists.
// {question} and {context} are the only placeholders.
const (
	DefaultDirectChatPrompt = "You are a helpful AI assistant. Answer the following question.\n" +
		"Question: {question}\n" +
		"Answer:"

	DefaultRepoQAPrompt = "Use the following pieces of context to answer the question at the end. " +
		"If you don't know the answer, just say that you don't know, don't try to make up an answer.\n\n" +
		"{context}\n\n" +
		"Question: {question}\n" +
		"Helpful Answer:"
)

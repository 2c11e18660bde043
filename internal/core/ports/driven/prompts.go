package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptDirectChat is the template for General Chat.
	// The template expects a {question} placeholder.
	PromptDirectChat = "direct_chat"

	// PromptRepoQA is the "stuff" template for Repo Q&A.
	// The template expects {context} and {question} placeholders.
	PromptRepoQA = "repo_qa"
)

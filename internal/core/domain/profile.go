package domain

import (
	"fmt"
	"strings"
)

// ChatProfile selects how a chat session answers messages.
// It is decided once at session start.
type ChatProfile int

// Available chat profiles.
const (
	// ProfileDirectChat answers with the model alone ("General Chat").
	ProfileDirectChat ChatProfile = iota + 1

	// ProfileRepoQA answers from retrieved repository chunks ("Repo Q&A").
	ProfileRepoQA
)

// Display names used by chat transports.
const (
	ProfileNameDirectChat = "General Chat"
	ProfileNameRepoQA     = "Repo Q&A"
)

// AllChatProfiles returns the profiles in presentation order.
func AllChatProfiles() []ChatProfile {
	return []ChatProfile{ProfileRepoQA, ProfileDirectChat}
}

// String returns the display name.
func (p ChatProfile) String() string {
	switch p {
	case ProfileDirectChat:
		return ProfileNameDirectChat
	case ProfileRepoQA:
		return ProfileNameRepoQA
	default:
		return unknownDescription
	}
}

// Description returns a short explanation of the profile.
func (p ChatProfile) Description() string {
	switch p {
	case ProfileDirectChat:
		return "A general-purpose chat with the model you chose."
	case ProfileRepoQA:
		return "Chat with your repositories. The model will use your code as context."
	default:
		return unknownDescription
	}
}

// IsValid returns true if the profile is recognised.
func (p ChatProfile) IsValid() bool {
	return p == ProfileDirectChat || p == ProfileRepoQA
}

// UsesRepositories returns true if the profile answers from indexes.
func (p ChatProfile) UsesRepositories() bool {
	return p == ProfileRepoQA
}

// ParseChatProfile parses a display name or short alias.
func ParseChatProfile(s string) (ChatProfile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "general chat", "general", "direct", "chat":
		return ProfileDirectChat, nil
	case "repo q&a", "repo-qa", "repoqa", "repo", "rag":
		return ProfileRepoQA, nil
	default:
		return 0, fmt.Errorf("%w: unknown chat profile %q", ErrInvalidInput, s)
	}
}

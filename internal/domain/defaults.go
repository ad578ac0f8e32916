package domain

import (
	"fmt"
	"time"
)

const day = 24 * time.Hour

type seed struct {
	url         string
	title       string
	description string
	tags        []string
	age         time.Duration
	favorite    bool
}

var seeds = []seed{
	{"https://react.dev/learn", "React docs - Quick Start", "Official React documentation with tutorials, guides and the API reference.", []string{"react", "frontend", "docs"}, 1 * day, true},
	{"https://arxiv.org/abs/2401.00001", "Prompt engineering in practice", "Chain-of-thought, few-shot and other prompting strategies for large language models.", []string{"ai", "llm", "research"}, 3 * day, true},
	{"https://tailwindcss.com/docs/installation/using-vite", "Tailwind CSS v4 with Vite", "Installing and configuring Tailwind CSS v4 in a Vite project.", []string{"css", "frontend", "tailwind"}, 5 * day, false},
	{"https://tauri.app/start/", "Tauri 2.0 - cross platform desktop apps", "Build small, secure desktop apps with a web frontend and a Rust core.", []string{"tauri", "desktop", "rust"}, 7 * day, false},
	{"https://www.pinecone.io/learn/vector-database/", "Vector databases explained - Pinecone", "How vector databases work and where they fit in retrieval augmented systems.", []string{"database", "ai", "vector"}, 10 * day, true},
	{"https://fastapi.tiangolo.com/", "FastAPI documentation", "Modern Python web framework built on type hints with automatic API docs.", []string{"python", "backend", "api"}, 14 * day, false},
	{"https://docs.anthropic.com/en/docs", "Claude API docs - Anthropic", "Model capabilities, request examples and best practices for the Claude API.", []string{"ai", "llm", "api"}, 20 * day, false},
	{"https://github.com/langchain-ai/langchain", "LangChain - LLM application framework", "Chains, agents and RAG building blocks for language model applications.", []string{"ai", "python", "framework"}, 30 * day, false},
	{"https://www.typescriptlang.org/docs/", "TypeScript handbook", "Complete reference of the TypeScript type system, generics and decorators.", []string{"typescript", "frontend", "docs"}, 45 * day, false},
	{"https://developer.chrome.com/docs/extensions/reference/api", "Chrome extensions API reference", "Tabs, bookmarks, storage and the other extension APIs.", []string{"chrome", "extension", "browser"}, 60 * day, false},
}

// DefaultBookmarks returns the starter library shown when nothing usable is
// stored yet. Timestamps are relative to now, newest first.
func DefaultBookmarks(now time.Time) []Bookmark {
	out := make([]Bookmark, 0, len(seeds))
	for i, s := range seeds {
		out = append(out, Bookmark{
			ID:          fmt.Sprintf("default-%02d", i+1),
			URL:         s.url,
			Title:       s.title,
			Description: s.description,
			Tags:        append([]string(nil), s.tags...),
			Domain:      ExtractDomain(s.url),
			CreatedAt:   now.Add(-s.age),
			IsFavorite:  s.favorite,
		})
	}
	return out
}

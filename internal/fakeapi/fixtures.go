package fakeapi

import "fmt"

// PullRequest builds a search result item for a merged pull request. An empty
// closedAt or body is encoded as null, as GitHub does.
func PullRequest(repo string, number int, title, closedAt, body string) map[string]any {
	item := map[string]any{
		"number":         number,
		"title":          title,
		"state":          "closed",
		"closed_at":      closedAt,
		"repository_url": "https://api.github.com/repos/" + repo,
		"html_url":       fmt.Sprintf("https://github.com/%s/pull/%d", repo, number),
		"body":           nil,
		"pull_request":   map[string]any{"url": fmt.Sprintf("https://api.github.com/repos/%s/pulls/%d", repo, number)},
	}
	if closedAt == "" {
		item["closed_at"] = nil
	}
	if body != "" {
		item["body"] = body
	}
	return item
}

// Paragraph builds an ADF document holding one paragraph of text.
func Paragraph(text string) map[string]any {
	return map[string]any{
		"type":    "doc",
		"version": 1,
		"content": []any{
			map[string]any{
				"type":    "paragraph",
				"content": []any{map[string]any{"type": "text", "text": text}},
			},
		},
	}
}

// Comment builds a Jira comment with an ADF body.
func Comment(author, text string) map[string]any {
	return map[string]any{
		"author": map[string]any{"displayName": author},
		"body":   Paragraph(text),
	}
}

// Issue builds a Jira issue. description and extra field values may be ADF
// documents, plain strings or nil.
func Issue(key, summary, resolved string, description any, extra map[string]any, comments ...map[string]any) map[string]any {
	list := make([]any, 0, len(comments))
	for _, c := range comments {
		list = append(list, c)
	}

	project := key
	for i := range key {
		if key[i] == '-' {
			project = key[:i]
			break
		}
	}

	fields := map[string]any{
		"summary":        summary,
		"description":    description,
		"resolutiondate": resolved,
		"project":        map[string]any{"key": project},
		"comment":        map[string]any{"comments": list, "total": len(list)},
	}
	for k, v := range extra {
		fields[k] = v
	}

	return map[string]any{
		"id":     key,
		"key":    key,
		"fields": fields,
	}
}

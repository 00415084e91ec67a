package moltbook

// Agent identifies an account on the platform.
type Agent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Post is the subset of a post payload the daemon cares about.
type Post struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Submolt   string `json:"submolt"`
	CreatedAt string `json:"created_at"`
}

// Comment is one comment on a post. Fields are filled by the tolerant
// extraction helpers below, since deployments disagree on payload shapes.
type Comment struct {
	ID        string
	Content   string
	ParentID  string
	CreatedAt string
	Author    Agent
}

// DMStatus is the result of a DM activity poll.
type DMStatus struct {
	HasActivity bool   `json:"has_activity"`
	Summary     string `json:"summary"`
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// ExtractComments pulls the comment list out of an API payload. The comments
// may live under "comments", "data" or "items", possibly nested one level,
// depending on the deployment.
func ExtractComments(payload map[string]any) []Comment {
	if payload == nil {
		return nil
	}

	var raw []any
	for _, key := range []string{"comments", "data", "items"} {
		switch v := payload[key].(type) {
		case []any:
			raw = v
		case map[string]any:
			for _, subkey := range []string{"comments", "items"} {
				if list, ok := v[subkey].([]any); ok {
					raw = list
					break
				}
			}
		}
		if raw != nil {
			break
		}
	}

	var out []Comment
	for _, item := range raw {
		m := asMap(item)
		if m == nil {
			continue
		}
		c := Comment{
			ID:      asString(m["id"]),
			Content: asString(m["content"]),
		}
		if c.ID == "" {
			continue
		}
		// parent_id vs parentId
		if pid := asString(m["parent_id"]); pid != "" {
			c.ParentID = pid
		} else {
			c.ParentID = asString(m["parentId"])
		}
		if at := asString(m["created_at"]); at != "" {
			c.CreatedAt = at
		} else {
			c.CreatedAt = asString(m["createdAt"])
		}
		// author vs agent
		author := asMap(m["author"])
		if author == nil {
			author = asMap(m["agent"])
		}
		if author != nil {
			c.Author = Agent{ID: asString(author["id"]), Name: asString(author["name"])}
		}
		out = append(out, c)
	}
	return out
}

// ExtractProfilePosts pulls the recent-post list out of a profile payload.
func ExtractProfilePosts(profile map[string]any) []Post {
	raw, _ := profile["recentPosts"].([]any)
	var out []Post
	for _, item := range raw {
		m := asMap(item)
		if m == nil {
			continue
		}
		id := asString(m["id"])
		if id == "" {
			continue
		}
		out = append(out, Post{
			ID:      id,
			Title:   asString(m["title"]),
			Submolt: asString(m["submolt"]),
		})
	}
	return out
}

// InferRespondedTo returns the set of comment ids that already have a reply
// authored by the given agent, inferred from parent ids. Used to avoid
// double-replying even when local state is stale.
func InferRespondedTo(comments []Comment, myAgentID string) map[string]struct{} {
	responded := make(map[string]struct{})
	if myAgentID == "" {
		return responded
	}
	for _, c := range comments {
		if c.Author.ID != myAgentID {
			continue
		}
		if c.ParentID != "" {
			responded[c.ParentID] = struct{}{}
		}
	}
	return responded
}

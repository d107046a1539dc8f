package explain

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Chatter is the chat completion capability LLM needs.
type Chatter interface {
	Chat(ctx context.Context, system, user string) (string, error)
}

// LLM explains proofs with a chat model. Failed searches and model errors
// are explained by Fallback.
type LLM struct {
	Client   Chatter
	Fallback Explainer
	Logger   *zap.Logger
}

const tutorPrompt = `You are a mathematics tutor. Explain the given formal proof to a high school student.
Explain why each step is valid and how it connects to the previous one. Do not add steps.
Start with "To solve this problem" and end with "Therefore".`

func (l *LLM) Explain(ctx context.Context, req Request) (string, error) {
	fallback := l.Fallback
	if fallback == nil {
		fallback = Template{}
	}
	if req.Proof == nil {
		return fallback.Explain(ctx, req)
	}

	var user strings.Builder
	problem := req.Problem.Text
	if problem == "" {
		problem = req.Problem.String()
	}
	fmt.Fprintf(&user, "Original problem: %s\n\nFormal proof steps:\n", problem)
	if req.Proof.Trivial() {
		user.WriteString("No steps: the goal is one of the given facts.\n")
	} else {
		user.WriteString(FormatSteps(req.Proof.Steps))
	}
	fmt.Fprintf(&user, "\nConclusion: %s\n", req.Proof.Conclusion)

	reply, err := l.Client.Chat(ctx, tutorPrompt, user.String())
	if err == nil {
		reply = Plaintext(reply)
	}
	if err != nil || reply == "" {
		l.logger().Warn("llm explanation unavailable, using template", zap.Error(err))
		return fallback.Explain(ctx, req)
	}
	return reply + "\n\n" + footer(req), nil
}

func (l *LLM) logger() *zap.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return zap.NewNop()
}

func footer(req Request) string {
	s := req.Proof.Stats
	return fmt.Sprintf("---\n%d steps, %d iterations, %d facts explored.", len(req.Proof.Steps), s.Iterations, s.Facts)
}

// blocks end a line when markup is flattened.
var blocks = map[string]bool{
	"p": true, "br": true, "div": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// Plaintext flattens HTML in a model reply to text. Replies without markup
// come back trimmed but otherwise untouched, so inequalities such as
// "x < 5" survive.
func Plaintext(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "</") && !strings.Contains(s, "<br") && !strings.Contains(s, "&") {
		return s
	}
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			buf.WriteString(n.Data)
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
		if n.Type == html.ElementNode && blocks[n.Data] {
			buf.WriteString("\n")
		}
	}
	extractText(doc)

	lines := strings.Split(buf.String(), "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

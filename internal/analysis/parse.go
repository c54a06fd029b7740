package analysis

import (
	"encoding/json"
	"strings"
)

const systemPrompt = `You are a biblical scholar and theologian. Your task is to analyze current news events and find relevant biblical scripture connections.

For each news item:
1. Identify 2-4 relevant Bible verses that relate to the themes, situations, or principles in the news
2. Explain how each scripture connects to the current event
3. Provide practical spiritual insights for believers

Format your response as JSON with this structure:
{
    "scripture_references": [
        {
            "reference": "Book Chapter:Verse",
            "text": "The verse text",
            "connection": "How this relates to the news"
        }
    ],
    "analysis": "Overall analysis of how biblical principles apply to this news event",
    "spiritual_application": "Practical takeaways for believers"
}`

const defaultApplication = "Seek God's wisdom in understanding current events."

func buildPrompt(headline, content string) string {
	return "Analyze this news event and connect it to biblical scripture:\n\n" +
		"Headline: " + headline + "\n\n" +
		"Content: " + content + "\n\n" +
		"Please provide relevant scripture references and analysis."
}

// Result is the structured part of a model reply.
type Result struct {
	ScriptureReferences  []ScriptureReference `json:"scripture_references"`
	Analysis             string               `json:"analysis"`
	SpiritualApplication string               `json:"spiritual_application"`
}

// ParseResult reads the JSON object out of reply, unwrapping a ```json or
// bare ``` fence if present. ok is false when reply held no usable JSON;
// the returned Result then carries the whole reply as the analysis.
func ParseResult(reply string) (res Result, ok bool) {
	body := unfence(reply)
	if err := json.Unmarshal([]byte(body), &res); err == nil && (res.Analysis != "" || len(res.ScriptureReferences) > 0) {
		if res.ScriptureReferences == nil {
			res.ScriptureReferences = []ScriptureReference{}
		}
		return res, true
	}

	connection := reply
	if r := []rune(connection); len(r) > 500 {
		connection = string(r[:500])
	}
	return Result{
		ScriptureReferences: []ScriptureReference{{
			Reference:  "Romans 8:28",
			Text:       "And we know that all things work together for good to those who love God, to those who are called according to his purpose.",
			Connection: connection,
		}},
		Analysis:             reply,
		SpiritualApplication: defaultApplication,
	}, false
}

func unfence(s string) string {
	if _, after, found := strings.Cut(s, "```json"); found {
		inner, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(inner)
	}
	if _, after, found := strings.Cut(s, "```"); found {
		inner, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(inner)
	}
	return strings.TrimSpace(s)
}

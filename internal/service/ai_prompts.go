package service

import (
	"fmt"
	"strings"
	"time"
)

const (
	transcriptHeader = "## Transcript:"
	summaryHeader    = "## Summary:"
	unparsedSummary  = "Summary could not be parsed."
)

func defaultSummaryPrompt(filename string, now time.Time) string {
	return fmt.Sprintf(`Please analyze the provided media and provide a detailed response in the following format:

%s
Provide a detailed transcript with timestamps in [HH:MM:SS] format where applicable.

%s
Media Title: %s
Date: %s

Key Points (with timestamps if possible):
- Point 1 [HH:MM:SS]
- Point 2 [HH:MM:SS]

Discussion Topics:
- Topic 1 ([HH:MM:SS - HH:MM:SS])
  - Detail

Action Items:
- Item 1 (Assigned: ?, Timestamp: [HH:MM:SS])

Conclusions:
[Summary of final decisions and next steps with timestamps]

Note: Please ensure summaries are supported by timestamps where possible.`,
		transcriptHeader, summaryHeader, filename, now.Format("January 02, 2006"))
}

// splitSummary 按 "## Summary:" 切分模型输出
func splitSummary(text string) (transcript, summary string) {
	parts := strings.SplitN(text, summaryHeader, 2)
	transcript = strings.TrimSpace(strings.Replace(parts[0], transcriptHeader, "", 1))
	if len(parts) < 2 {
		return transcript, unparsedSummary
	}
	return transcript, strings.TrimSpace(parts[1])
}

func caseStudyPrompt(topic string) string {
	return fmt.Sprintf(`Generate a detailed and insightful case study based on the following topic or request:

**Topic/Request:** %s

**Instructions for Case Study:**
- Clearly define the problem or situation.
- Provide relevant background information.
- Describe the challenges faced.
- Detail the actions taken or solutions implemented.
- Analyze the results and outcomes.
- Conclude with key takeaways or lessons learned.
- Ensure the case study is well-structured, informative, and engaging.

**Generated Case Study:**
`, topic)
}

func assignmentPrompt(text string) string {
	return fmt.Sprintf(`Analyze the following assignment text submitted by a student. Provide feedback on the following aspects:

1.  **Correctness:** Briefly evaluate the potential factual accuracy and correctness of the content based on general knowledge. Point out any obvious errors or questionable statements. Be concise.
2.  **Clarity & Structure:** Assess the clarity of the writing, the logical flow of ideas, and the overall structure. Suggest specific improvements if needed. Be concise.

Present the feedback clearly, using markdown formatting with sections for **Correctness** and **Clarity & Structure**.

Assignment Text:
---BEGIN ASSIGNMENT---
%s
---END ASSIGNMENT---
`, text)
}

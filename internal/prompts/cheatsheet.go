// Package prompts builds the model prompts for every reduction job in the
// pipelines. All builders are pure functions from inputs to strings; the
// returned closures plug directly into summarize.Job prompt slots.
package prompts

import (
	"fmt"
	"strings"
)

const contentStructure = `
1. Overview
    * Host and Guest Information
2. Episode Summary
    * Brief Synopsis
    * Key Discussion Points
3. Key Takeaways
    * Actionable Insights
    * Lessons Learned
4. Notable Quotes
    * Memorable Statements
    * Speaker Attribution
5. Frameworks and Models Discussed
    * Descriptions
    * Applications
6. Case Studies and Examples
    * Overview
    * Insights
7. Industry Trends and Insights
    * Current Trends
    * Future Predictions
8. Tools and Resources
    * Recommended Tools
    * Additional Resources
9. Challenges and Solutions
    * Identified Challenges
    * Proposed Solutions
10. Questions for Reflection
    * Self-Assessment Questions
    * Team Discussion Points
11. Action Items
    * Immediate Steps
    * Long-Term Strategies
`

const guidelines = `
* Writing Style: Use clear, professional language. Ensure the tone is engaging and informative.
* Focus: Only include information present in the transcript content you are given.
* Consistency: Ensure consistent terminology and style throughout the summary.
* Detail and Depth: Provide sufficient detail in each section to make the cheatsheet a standalone resource.
* Markdown Format: Use Markdown syntax for headings, subheadings, lists, and emphasis where appropriate.
* Avoid Plagiarism: Paraphrase the transcript in your own words. Enclose direct quotes in quotation marks and attribute them.
`

func languageLine(language string) string {
	if language == "" {
		return ""
	}
	return fmt.Sprintf("\n# Output Language:\nWrite the entire result in %s.\n", language)
}

// CheatsheetSeed builds the prompt creating the initial cheatsheet from the
// first transcript chunk, tailored to the given persona.
func CheatsheetSeed(persona, language string) func(chunk string) string {
	return func(chunk string) string {
		return fmt.Sprintf(`# Instructions:

You are a helpful assistant tasked with creating the initial summary for a detailed cheatsheet based on the first chunk of a video transcript. Focus solely on the content within this transcript chunk. For each applicable section listed below, write comprehensive sentences that thoroughly explain each point. Format the result in Markdown with appropriate headings and subheadings.

# Who's this summary for?
%s

# Sections to Include (as relevant to this chunk):
%s

# Guidelines:
%s%s
# Transcript Chunk:
%s
`, persona, contentStructure, guidelines, languageLine(language), chunk)
	}
}

// CheatsheetRefine builds the prompt folding a further transcript chunk into
// the existing cheatsheet.
func CheatsheetRefine(persona, language string) func(existing, chunk string) string {
	return func(existing, chunk string) string {
		return fmt.Sprintf(`# Instructions:

You are a helpful assistant tasked with refining and expanding a detailed cheatsheet. Using the existing summary and new information from an additional chunk of the video transcript, create an updated and comprehensive cheatsheet. Integrate new information seamlessly, keep the flow coherent across all sections, eliminate redundancies, and deepen detail where appropriate. Prioritize what is most useful for the persona below.

# Who's this summary for?
%s

# Sections to Include (as relevant):
%s

# Guidelines:
%s%s
# Existing Summary:
%s

# New Transcript Chunk:
%s

# Updated Complete Summary:
`, persona, contentStructure, guidelines, languageLine(language), existing, chunk)
	}
}

// CheatsheetOneShot builds the prompt used when the whole transcript fits a
// single chunk.
func CheatsheetOneShot(persona, language string) func(transcript string) string {
	return func(transcript string) string {
		return fmt.Sprintf(`# Instructions:

You are a helpful assistant tasked with creating a detailed cheatsheet based on a video transcript. Focus solely on the content within this transcript. For each section, write comprehensive sentences that thoroughly explain each point rather than brief bullet points.

# Who's this summary for?
%s

# Sections to Include (as relevant):
%s

# Guidelines:
%s%s
# Transcript:
%s
`, persona, contentStructure, guidelines, languageLine(language), transcript)
	}
}

// TopicMap builds the per-chunk prompt extracting only content relevant to the
// requested topics. Chunks are independent, so these calls may run in any order.
func TopicMap(topics []string, language string) func(chunk string) string {
	list := "- " + strings.Join(topics, "\n- ")
	return func(chunk string) string {
		return fmt.Sprintf(`# Instructions:

From the transcript chunk below, extract every statement, example, and insight relevant to the topics listed. Ignore unrelated content. Write the findings as Markdown bullet points grouped under a heading per topic; omit topics with no relevant content in this chunk.

# Topics:
%s
%s
# Transcript Chunk:
%s
`, list, languageLine(language), chunk)
	}
}

// TopicCombine merges per-chunk topic findings into one cheatsheet.
func TopicCombine(topics []string, language string) func(joined string) string {
	list := "- " + strings.Join(topics, "\n- ")
	return func(joined string) string {
		return fmt.Sprintf(`# Instructions:

Below are topic-relevant notes extracted from consecutive chunks of one video transcript. Merge them into a single coherent Markdown cheatsheet with one section per topic. Deduplicate repeated points, resolve inconsistencies, and keep every distinct insight.

# Topics:
%s
%s
# Extracted Notes:
%s
`, list, languageLine(language), joined)
	}
}

// TopicOneShot covers the single-chunk path of a topic-driven job.
func TopicOneShot(topics []string, language string) func(transcript string) string {
	list := "- " + strings.Join(topics, "\n- ")
	return func(transcript string) string {
		return fmt.Sprintf(`# Instructions:

From the transcript below, produce a Markdown cheatsheet with one section per listed topic, covering every statement, example, and insight relevant to it. Omit topics the transcript never touches.

# Topics:
%s
%s
# Transcript:
%s
`, list, languageLine(language), transcript)
	}
}

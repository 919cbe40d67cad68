package prompts

import (
	"fmt"

	"vodsheet/internal/summarize"
)

// Main-theme extraction runs as a sequential refine so the theme stays
// coherent across the whole narrative.

func ThemeSeed() func(chunk string) string {
	return func(chunk string) string {
		return fmt.Sprintf(`Read the first chunk of a video transcript and describe, in two or three sentences, what the video is fundamentally about so far: its central theme and the angle the speakers take on it.

# Transcript Chunk:
%s
`, chunk)
	}
}

func ThemeRefine() func(existing, chunk string) string {
	return func(existing, chunk string) string {
		return fmt.Sprintf(`You previously described the central theme of a video from its earlier transcript chunks. Revise that description using the next chunk: keep it to two or three sentences, adjust it if the new content shifts or sharpens the theme, and leave it unchanged if not.

# Current Theme Description:
%s

# New Transcript Chunk:
%s

# Revised Theme Description:
`, existing, chunk)
	}
}

func ThemeOneShot() func(transcript string) string {
	return func(transcript string) string {
		return fmt.Sprintf(`Read the video transcript and describe, in two or three sentences, what the video is fundamentally about: its central theme and the angle the speakers take on it.

# Transcript:
%s
`, transcript)
	}
}

// Persona extraction also refines sequentially: the ideal-audience picture
// sharpens as more of the conversation is seen.

func PersonaSeed() func(chunk string) string {
	return func(chunk string) string {
		return fmt.Sprintf(`Read the first chunk of a video transcript and describe, in two or three sentences, the person who would benefit most from this content: their role, experience level, and what they are trying to achieve.

# Transcript Chunk:
%s
`, chunk)
	}
}

func PersonaRefine() func(existing, chunk string) string {
	return func(existing, chunk string) string {
		return fmt.Sprintf(`You previously described the ideal audience for a video from its earlier transcript chunks. Revise that description using the next chunk: keep it to two or three sentences and adjust only if the new content changes who benefits most.

# Current Audience Description:
%s

# New Transcript Chunk:
%s

# Revised Audience Description:
`, existing, chunk)
	}
}

func PersonaOneShot() func(transcript string) string {
	return func(transcript string) string {
		return fmt.Sprintf(`Read the video transcript and describe, in two or three sentences, the person who would benefit most from this content: their role, experience level, and what they are trying to achieve.

# Transcript:
%s
`, transcript)
	}
}

// Discussion-topic tagging treats chunks as independent, so it runs as a
// map-reduce rather than a refine.

func DiscussionMap() func(chunk string) string {
	return func(chunk string) string {
		return fmt.Sprintf(`List the distinct discussion topics covered in this transcript chunk, one short noun phrase per line. No numbering, no commentary.

# Transcript Chunk:
%s
`, chunk)
	}
}

func DiscussionCombine() func(joined string) string {
	return func(joined string) string {
		return fmt.Sprintf(`Below are topic lists extracted from consecutive chunks of one video transcript. Merge them into a single deduplicated list of the video's discussion topics, one short noun phrase per line, most prominent first. No numbering, no commentary.

# Topic Lists:
%s
`, joined)
	}
}

func DiscussionOneShot() func(transcript string) string {
	return func(transcript string) string {
		return fmt.Sprintf(`List the distinct discussion topics covered in this transcript, one short noun phrase per line, most prominent first. No numbering, no commentary.

# Transcript:
%s
`, transcript)
	}
}

// DiscussionSchema is the structured shape the topic list is extracted into
// after reduction.
func DiscussionSchema() []summarize.FieldSpec {
	return []summarize.FieldSpec{
		{Name: "topics", Type: summarize.FieldStringArray, Description: "the video's distinct discussion topics, one short noun phrase each, most prominent first"},
	}
}

// CheatsheetSchema is the structured section layout a finished cheatsheet is
// extracted into when the caller wants named sections instead of plain Markdown.
func CheatsheetSchema() []summarize.FieldSpec {
	return []summarize.FieldSpec{
		{Name: "episode_summary", Type: summarize.FieldString, Description: "a brief synopsis of the episode"},
		{Name: "key_takeaways", Type: summarize.FieldStringArray, Description: "actionable insights and lessons learned"},
		{Name: "notable_quotes", Type: summarize.FieldStringArray, Description: "memorable statements with speaker attribution"},
		{Name: "tools_and_resources", Type: summarize.FieldStringArray, Description: "tools and resources recommended in the episode"},
		{Name: "action_items", Type: summarize.FieldStringArray, Description: "immediate steps and long-term strategies suggested"},
	}
}

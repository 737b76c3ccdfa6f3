package service

import (
	"fmt"
	"strings"

	templatemodel "lexivo/internal/template/model"
	"lexivo/pkg/openai"
)

func buildGrammarMessages(text string) []openai.Message {
	return []openai.Message{
		{Role: "system", Content: strings.Join([]string{
			"Role:",
			"You are a meticulous copy editor.",
			"",
			"Task:",
			"Find grammar, spelling, punctuation, clarity and style problems in the user's text.",
			"",
			"Rules:",
			"1) Report each problem once, in the order it appears.",
			"2) start and end are character offsets into the original text, end exclusive.",
			"3) original must be the exact text between start and end.",
			"4) type is one of grammar, spelling, punctuation, style, clarity.",
			"5) Do not rewrite text that is already correct.",
			"",
			"Output Contract:",
			"Return JSON only: {\"suggestions\":[{\"id\":string,\"type\":string,\"message\":string," +
				"\"original\":string,\"suggestion\":string,\"start\":number,\"end\":number,\"explanation\":string}]," +
				"\"score\":number}. score is 0-100 for overall writing quality.",
		}, "\n")},
		{Role: "user", Content: text},
	}
}

func buildVariationMessages(text, tone string) []openai.Message {
	return []openai.Message{
		{Role: "system", Content: strings.Join([]string{
			"Role:",
			"You rewrite social media copy.",
			"",
			"Task:",
			fmt.Sprintf("Rewrite the user's text in a %s tone. Keep the meaning and roughly the same length.", tone),
			"Stay under 2200 characters.",
			"",
			"Output Contract:",
			"Return JSON only: {\"text\":string}.",
		}, "\n")},
		{Role: "user", Content: text},
	}
}

func buildSlideMessages(source string, count int, tone string, voice *templatemodel.VoiceProfile) []openai.Message {
	lines := []string{
		"Role:",
		"You turn long-form writing into Instagram carousel slides.",
		"",
		"Task:",
		fmt.Sprintf("Write exactly %d slides in a %s tone from the user's text.", count, tone),
		"The first slide is a hook, the last slide is a call to action.",
		"Each slide has a short title and content of at most 2200 characters.",
	}
	if voice != nil {
		lines = append(lines, "", "Brand Voice:")
		lines = append(lines, voiceLines(voice)...)
	}
	lines = append(lines,
		"",
		"Output Contract:",
		"Return JSON only: {\"slides\":[{\"title\":string,\"content\":string}]}.",
	)
	return []openai.Message{
		{Role: "system", Content: strings.Join(lines, "\n")},
		{Role: "user", Content: strings.TrimSpace(source)},
	}
}

func voiceLines(v *templatemodel.VoiceProfile) []string {
	var out []string
	if v.Tone != "" {
		out = append(out, "- Tone: "+v.Tone)
	}
	if v.Style != "" {
		out = append(out, "- Style: "+v.Style)
	}
	if v.Audience != "" {
		out = append(out, "- Audience: "+v.Audience)
	}
	if len(v.Vocabulary) > 0 {
		out = append(out, "- Prefer words: "+strings.Join(v.Vocabulary, ", "))
	}
	if len(v.Avoid) > 0 {
		out = append(out, "- Never use: "+strings.Join(v.Avoid, ", "))
	}
	return out
}

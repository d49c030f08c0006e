// Package sanitize strips the commentary a vision model tends to wrap
// around Arabic OCR output.
package sanitize

import (
	"regexp"
	"strings"
)

// Rule replaces every match of Pattern with Replacement.
type Rule struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
}

func commentary(name, expr string) Rule {
	return Rule{
		Name:    name,
		Pattern: regexp.MustCompile(`(?is)` + expr),
	}
}

// CommentaryRules run in order, each on the output of the previous one.
// Some of them are broad and can eat Arabic text that shares a sentence
// with Latin words.
var CommentaryRules = []Rule{
	commentary("indonesian_intro", `Berikut teks Arab.*?:`),
	commentary("some_differences", `There are some.*?differences.*?\.`),
	commentary("i_have_corrected", `I have corrected.*?\.`),
	commentary("most_significant_difference", `The most significant difference.*?\.`),
	commentary("based_on_understanding", `based on my understanding.*?\.`),
	commentary("common_spelling", `common Arabic spelling.*?\.`),
	commentary("where_the_ocr", `where the OCR.*?\.`),
	commentary("here_is_the", `Here is the.*?:`),
	commentary("the_arabic_text", `The Arabic text.*?:`),
	commentary("ocr_misinterprets", `OCR misinterprets.*?\.`),
	commentary("minor_transcription", `Some minor.*?transcription\.`),
	commentary("spelling_sentence", `[A-Za-z].*?spelling\.`),
	commentary("significant_difference", `.*?significant difference.*?\.`),
	commentary("understanding_context", `.*?understanding.*?context.*?\.`),
	commentary("latin_paragraph", `\n\n[A-Za-z].*`),
	commentary("mentions_arabic", `[A-Za-z]{3,}.*?Arabic.*?\.`),
}

// space is any Unicode whitespace. RE2's \s alone only covers ASCII, OCR
// output often carries NBSP and ideographic spaces.
const space = `[\s\v\x{1c}-\x{1f}\x{85}\p{Z}]`

var WhitespaceRules = []Rule{
	{Name: "blank_lines", Pattern: regexp.MustCompile(`\n` + space + `*\n`), Replacement: "\n"},
	{Name: "long_whitespace", Pattern: regexp.MustCompile(space + `{3,}`), Replacement: " "},
}

// Apply folds rules over text from left to right.
func Apply(text string, rules []Rule) string {
	for _, rule := range rules {
		text = rule.Pattern.ReplaceAllLiteralString(text, rule.Replacement)
	}
	return text
}

// Clean removes commentary, collapses whitespace and trims the result.
// Clean is not guaranteed to be idempotent.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	text = Apply(text, CommentaryRules)
	text = Apply(text, WhitespaceRules)
	return strings.TrimSpace(text)
}

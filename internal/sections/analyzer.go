// Package sections derives structural signals from plain resume text.
package sections

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"resumescore/internal/types"
)

type section int

const (
	sectionNone section = iota
	sectionSummary
	sectionExperience
	sectionEducation
	sectionSkills
	sectionOther
)

// Heading keywords, matched against short lines after markup is stripped.
var headingKeywords = []struct {
	section  section
	keywords []string
}{
	{sectionExperience, []string{"professional experience", "work experience", "work history", "employment history", "employment", "experience"}},
	{sectionEducation, []string{"academic background", "education", "qualifications"}},
	{sectionSkills, []string{"technical skills", "core competencies", "technologies", "skills"}},
	{sectionSummary, []string{"professional summary", "about me", "objective", "profile", "summary"}},
	{sectionOther, []string{"certifications", "projects", "awards", "publications", "languages", "interests", "references", "volunteer"}},
}

// Heading labels are short: a bare heading line, or a "Label:" prefix.
// Besides the keyword a label may carry a couple of qualifier words, as in
// "Relevant Experience" or "Skills & Tools".
const (
	maxHeadingWords   = 6
	maxQualifierWords = 2
)

// Declarative fragments longer than this are prose, not bullets.
const maxFragmentWords = 25

var (
	emailPattern  = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phonePattern  = regexp.MustCompile(`(?:\+?\d{1,3}[\s.\-]?)?(?:\(\d{2,4}\)|\d{2,4})[\s.\-]?\d{3,4}[\s.\-]?\d{3,4}`)
	datePattern   = regexp.MustCompile(`(?i)\b(?:(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?\s+)?(?:19|20)\d{2}\b|\b(?:0?[1-9]|1[0-2])/(?:19|20)\d{2}\b|\bpresent\b`)
	numberPattern = regexp.MustCompile(`(?i)\d+(?:[.,]\d+)?\s*(?:%|percent\b|x\b|k\b|m\b|\+)|\$\s?\d|\b\d+\s+(?:people|engineers|developers|users|customers|clients|members|projects|reports|employees|stores|countries)\b`)
	orderedBullet = regexp.MustCompile(`^\d{1,2}[.)]\s+`)
)

var bulletMarkers = []string{"-", "*", "•", "◦", "▪", "‣", "–", "·", "●", "○", "■", "□", "➢", "►"}

// AnalyzeSections scans text once and returns its section signals. It never
// fails; missing signals evaluate to false or zero.
func AnalyzeSections(text string) types.SectionSignals {
	var sig types.SectionSignals
	if strings.TrimSpace(text) == "" {
		return sig
	}

	sig.WordCount = len(strings.Fields(text))
	sig.HasEmail = emailPattern.MatchString(text)
	sig.HasPhone = hasPhone(text)
	sig.HasContactInfo = sig.HasEmail || sig.HasPhone
	sig.HasDates = datePattern.MatchString(text)
	sig.SpecialCharCount = countSpecialChars(text)

	var (
		current         = sectionNone
		contentLines    int
		bulletLines     int
		experienceLines int
		verbLines       int
		tableRows       int
	)

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		sig.LineCount++

		if s, rest, ok := detectHeading(line); ok {
			current = s
			markSection(&sig, s)
			if rest == "" {
				continue
			}
			// "Skills: Python, Go" carries content after the label.
			line = rest
		}

		contentLines++
		if isTableRow(raw) {
			tableRows++
		}
		if numberPattern.MatchString(line) && current == sectionExperience {
			sig.HasQuantifiedResults = true
		}

		body, marked := stripBullet(line)
		startsWithVerb := StartsWithActionVerb(body)
		if marked || (startsWithVerb && len(strings.Fields(body)) <= maxFragmentWords) {
			bulletLines++
		}

		if current == sectionExperience {
			experienceLines++
			if startsWithVerb {
				verbLines++
			}
		}
	}

	if contentLines > 0 {
		sig.BulletDensity = ratio(bulletLines, contentLines)
	}
	if experienceLines > 0 {
		sig.ActionVerbRatio = ratio(verbLines, experienceLines)
	}
	sig.HasTables = tableRows >= 2

	return sig
}

func markSection(sig *types.SectionSignals, s section) {
	switch s {
	case sectionSummary:
		sig.HasSummary = true
	case sectionExperience:
		sig.HasExperience = true
	case sectionEducation:
		sig.HasEducation = true
	case sectionSkills:
		sig.HasSkillsSection = true
	}
}

// detectHeading recognizes a heading line, returning the section and any
// inline content that followed a "Label:" heading. Bullets and lines that
// open with an action verb are content, never headings.
func detectHeading(line string) (section, string, bool) {
	if isBulletLine(line) || StartsWithActionVerb(line) {
		return sectionNone, "", false
	}

	label, rest := line, ""
	if i := strings.Index(line, ":"); i > 0 {
		label, rest = line[:i], strings.TrimSpace(line[i+1:])
	}

	label = strings.Trim(label, "#*_=-|[] \t")
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" || strings.HasSuffix(label, ".") || len(strings.Fields(label)) > maxHeadingWords {
		return sectionNone, "", false
	}

	for _, h := range headingKeywords {
		for _, kw := range h.keywords {
			idx := wordIndex(label, kw)
			if idx < 0 {
				continue
			}
			qualifiers := strings.Fields(label[:idx] + " " + label[idx+len(kw):])
			if len(qualifiers) <= maxQualifierWords {
				return h.section, rest, true
			}
		}
	}
	return sectionNone, "", false
}

// isBulletLine reports whether line opens with a list marker. Doubled
// markers such as "**Education**" or "--- Skills ---" are decoration.
func isBulletLine(line string) bool {
	if orderedBullet.MatchString(line) {
		return true
	}
	for _, m := range bulletMarkers {
		after, ok := strings.CutPrefix(line, m)
		if !ok {
			continue
		}
		next, _ := utf8.DecodeRuneInString(after)
		return after != "" && !unicode.IsPunct(next) && !unicode.IsSymbol(next)
	}
	return false
}

// wordIndex returns the index of word in s at word boundaries, or -1
func wordIndex(s, word string) int {
	idx := strings.Index(s, word)
	for idx >= 0 {
		end := idx + len(word)
		beforeOK := idx == 0 || !isLetter(s[idx-1])
		afterOK := end == len(s) || !isLetter(s[end])
		if beforeOK && afterOK {
			return idx
		}
		next := strings.Index(s[idx+1:], word)
		if next < 0 {
			break
		}
		idx += next + 1
	}
	return -1
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func stripBullet(line string) (string, bool) {
	for _, m := range bulletMarkers {
		if strings.HasPrefix(line, m) {
			return strings.TrimSpace(strings.TrimPrefix(line, m)), true
		}
	}
	if loc := orderedBullet.FindStringIndex(line); loc != nil {
		return strings.TrimSpace(line[loc[1]:]), true
	}
	return line, false
}

func hasPhone(text string) bool {
	for _, m := range phonePattern.FindAllString(text, -1) {
		digits := 0
		for _, r := range m {
			if unicode.IsDigit(r) {
				digits++
			}
		}
		if digits >= 9 && digits <= 15 && !yearsOnly(m) {
			return true
		}
	}
	return false
}

// yearsOnly reports whether every digit group in m is a year, as in a run
// of dates like "2015 2019 2020".
func yearsOnly(m string) bool {
	groups := strings.FieldsFunc(m, func(r rune) bool { return !unicode.IsDigit(r) })
	for _, g := range groups {
		if len(g) != 4 || !(strings.HasPrefix(g, "19") || strings.HasPrefix(g, "20")) {
			return false
		}
	}
	return len(groups) > 0
}

func isTableRow(line string) bool {
	return strings.Count(line, "|") >= 2 || strings.Count(strings.TrimSpace(line), "\t") >= 2
}

// countSpecialChars counts runes that commonly break ATS parsers.
func countSpecialChars(text string) int {
	n := 0
	for _, r := range text {
		switch {
		case r == unicode.ReplacementChar:
			n++
		case r >= 0x2500 && r <= 0x259F: // box drawing and block elements
			n++
		case r >= 0xE000 && r <= 0xF8FF: // private use (icon fonts)
			n++
		case r >= 0x1F300 && r <= 0x1FAFF: // emoji and pictographs
			n++
		case r >= 0x2600 && r <= 0x26FF: // miscellaneous symbols
			n++
		case r >= 0x2700 && r <= 0x27BF && r != '➢': // dingbats
			n++
		}
	}
	return n
}

func ratio(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole)
}

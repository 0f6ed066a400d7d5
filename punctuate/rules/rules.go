// Package rules implements transcript post-processing with local rules:
// spoken-filler removal, repeated-word collapse, and rule-based inverse
// text normalization for Chinese numbers.
package rules

import (
	"context"
	"regexp"
	"strings"

	"github.com/skillsenselab/asrd/provider"
	"github.com/skillsenselab/asrd/punctuate"
)

// ProviderName is the registered name for the rules post-processor.
const ProviderName = "rules"

// fillerRunes are spoken hesitation sounds removed in isolation.
var fillerRunes = map[rune]bool{
	'呃': true, '嗯': true, '啊': true, '哎': true, '额': true,
	'噢': true, '哦': true, '呀': true, '诶': true, '唉': true,
}

var (
	leadingFillerRE   = regexp.MustCompile(`^[呃嗯啊哎额噢哦呀诶唉][，、,]?\s*`)
	separatedFillerRE = regexp.MustCompile(`[，、,]\s*[呃嗯啊哎额噢哦呀诶唉][，、,]`)
	repeatedCommaRE   = regexp.MustCompile(`[，、]{2,}`)
)

// Provider implements punctuate.Provider with local rules.
type Provider struct{}

// NewProvider creates a rules post-processor.
func NewProvider() *Provider { return &Provider{} }

// Factory returns a provider.Factory creating rules post-processors.
func Factory() provider.Factory[punctuate.Provider] {
	return func(_ map[string]any) (punctuate.Provider, error) {
		return NewProvider(), nil
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable always reports true; the rules run in-process.
func (p *Provider) IsAvailable(_ context.Context) bool { return true }

// Process applies the cleanup passes in order: fillers, repetitions,
// optional number normalization, then punctuation tidy-up.
func (p *Provider) Process(_ context.Context, req punctuate.Request) (string, error) {
	text := cleanFillers(req.Text)
	text = collapseRepetitions(text)
	if req.UseITN {
		text = normalizeNumbers(text)
	}
	text = repeatedCommaRE.ReplaceAllString(text, "，")
	if strings.HasSuffix(text, "，") {
		text = strings.TrimSuffix(text, "，") + "。"
	}
	return strings.TrimSpace(text), nil
}

// cleanFillers removes hesitation sounds at the sentence head, between
// punctuation, and in repeated runs.
func cleanFillers(text string) string {
	text = leadingFillerRE.ReplaceAllString(text, "")
	text = separatedFillerRE.ReplaceAllString(text, "，")
	return strings.TrimSpace(removeFillerRuns(text))
}

// removeFillerRuns drops runs of two or more of the same filler rune.
func removeFillerRuns(text string) string {
	runes := []rune(text)
	var out []rune
	for i := 0; i < len(runes); {
		r := runes[i]
		if fillerRunes[r] {
			j := i
			for j < len(runes) && runes[j] == r {
				j++
			}
			if j-i >= 2 {
				i = j
				continue
			}
		}
		out = append(out, r)
		i++
	}
	return string(out)
}

// collapseRepetitions reduces stuttered words ("对对对对") to a single
// occurrence. Single runes repeated three or more times collapse first,
// then two-rune groups.
func collapseRepetitions(text string) string {
	text = collapseRepeatedGroups(text, 1, 3)
	return collapseRepeatedGroups(text, 2, 3)
}

// collapseRepeatedGroups collapses runs of a repeated Han group of
// groupLen runes occurring at least minRepeats times to one occurrence.
func collapseRepeatedGroups(text string, groupLen, minRepeats int) string {
	runes := []rune(text)
	var out []rune
	for i := 0; i < len(runes); {
		if i+groupLen <= len(runes) && allHan(runes[i:i+groupLen]) {
			group := runes[i : i+groupLen]
			count := 1
			for j := i + groupLen; j+groupLen <= len(runes) && equalRunes(runes, j, group); j += groupLen {
				count++
			}
			if count >= minRepeats {
				out = append(out, group...)
				i += count * groupLen
				continue
			}
		}
		out = append(out, runes[i])
		i++
	}
	return string(out)
}

func equalRunes(runes []rune, off int, group []rune) bool {
	if off+len(group) > len(runes) {
		return false
	}
	for k, r := range group {
		if runes[off+k] != r {
			return false
		}
	}
	return true
}

func allHan(runes []rune) bool {
	for _, r := range runes {
		if r < 0x4e00 || r > 0x9fa5 {
			return false
		}
	}
	return true
}

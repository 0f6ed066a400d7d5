package rules

import (
	"context"
	"testing"

	"github.com/skillsenselab/asrd/punctuate"
)

func process(t *testing.T, text string, itn bool) string {
	t.Helper()
	p := NewProvider()
	out, err := p.Process(context.Background(), punctuate.Request{Text: text, UseITN: itn})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	return out
}

func TestProcess_RemovesLeadingFiller(t *testing.T) {
	if got := process(t, "呃，今天天气不错", false); got != "今天天气不错" {
		t.Errorf("got %q", got)
	}
}

func TestProcess_RemovesSeparatedFiller(t *testing.T) {
	if got := process(t, "我们，嗯，继续讨论", false); got != "我们，继续讨论" {
		t.Errorf("got %q", got)
	}
}

func TestProcess_RemovesFillerRuns(t *testing.T) {
	if got := process(t, "这个嗯嗯嗯方案可行", false); got != "这个方案可行" {
		t.Errorf("got %q", got)
	}
}

func TestProcess_CollapsesRepeatedWords(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"single rune stutter", "对对对对，就是这样", "对，就是这样"},
		{"two rune stutter", "可以可以可以，开始吧", "可以，开始吧"},
		{"double occurrence kept", "谢谢大家", "谢谢大家"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := process(t, tt.input, false); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestProcess_Deterministic(t *testing.T) {
	input := "呃，对对对对，百分之五十的人同意"
	first := process(t, input, true)
	second := process(t, input, true)
	if first != second {
		t.Errorf("non-deterministic output: %q vs %q", first, second)
	}
}

func TestProcess_TidiesPunctuation(t *testing.T) {
	if got := process(t, "好的，，，没问题，", false); got != "好的，没问题。" {
		t.Errorf("got %q", got)
	}
}

func TestNormalizeNumbers(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"percent", "百分之五十", "50%"},
		{"percent decimal", "百分之三点五", "3.5%"},
		{"year", "二零二五年的计划", "2025年的计划"},
		{"decimal", "增长了二十五点六", "增长了25.6"},
		{"unit wan", "三百万元", "300万元"},
		{"unit people", "五十人参加", "50人参加"},
		{"mixed passthrough", "没有数字的句子", "没有数字的句子"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeNumbers(tt.input); got != tt.expected {
				t.Errorf("normalizeNumbers(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestProcess_ITNDisabled(t *testing.T) {
	if got := process(t, "百分之五十", false); got != "百分之五十" {
		t.Errorf("ITN must not run when disabled, got %q", got)
	}
}

package main

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestPadOrTruncStyledText(t *testing.T) {
	styled := " TradeSim  \x1b[1;32m● connected\x1b[0m  total: $1,000.00 "

	padded := padOrTrunc(styled, 60)
	if w := lipgloss.Width(padded); w != 60 {
		t.Errorf("padded width = %d cells, want 60", w)
	}
	if !strings.HasPrefix(padded, styled) {
		t.Error("padding altered the styled content")
	}

	truncated := padOrTrunc(styled, 15)
	if w := lipgloss.Width(truncated); w != 15 {
		t.Errorf("truncated width = %d cells, want 15", w)
	}
	if strings.HasSuffix(truncated, "\x1b") || strings.HasSuffix(truncated, "\x1b[") {
		t.Errorf("truncation split an escape sequence: %q", truncated)
	}
}

func TestPadOrTruncPlainText(t *testing.T) {
	if got := padOrTrunc("abc", 5); got != "abc  " {
		t.Errorf("padOrTrunc(abc, 5) = %q", got)
	}
	if got := padOrTrunc("abcdef", 4); lipgloss.Width(got) != 4 {
		t.Errorf("padOrTrunc(abcdef, 4) = %q, want 4 cells", got)
	}
}

func TestTail(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 5}
	if got := tail(prices, 3); len(got) != 3 || got[0] != 3 {
		t.Errorf("tail = %v, want last 3", got)
	}
	if got := tail(prices, 10); len(got) != 5 {
		t.Errorf("tail = %v, want all 5", got)
	}
}

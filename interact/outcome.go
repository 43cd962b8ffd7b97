// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2024 Canonical Ltd
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 */

// Package interact carries the contracts between the planners and the
// front ends that resolve user intent: the tri-state selection
// outcome and a scripted resolver for non-interactive use.
package interact

// OutcomeKind distinguishes the three results a selection flow can
// have: a value was chosen, the prior value is kept, or the prior
// value is discarded.
type OutcomeKind int

const (
	// KindSelection means a new value was chosen.
	KindSelection OutcomeKind = iota
	// KindSkip means the flow was skipped and any preset is kept.
	KindSkip
	// KindReset means any preset is discarded.
	KindReset
)

// Outcome is the tagged result of a selection flow. Consumers switch
// on Kind; there are no sentinel values.
type Outcome struct {
	kind  OutcomeKind
	value string
}

// Selection returns an outcome carrying a newly chosen value.
func Selection(value string) Outcome {
	return Outcome{kind: KindSelection, value: value}
}

// Skip returns an outcome that keeps the preset.
func Skip() Outcome {
	return Outcome{kind: KindSkip}
}

// Reset returns an outcome that discards the preset.
func Reset() Outcome {
	return Outcome{kind: KindReset}
}

// Kind returns which of the three variants this outcome is.
func (o Outcome) Kind() OutcomeKind {
	return o.kind
}

// Value returns the chosen value; the second return is false unless
// the outcome is a selection.
func (o Outcome) Value() (string, bool) {
	return o.value, o.kind == KindSelection
}

// Apply reconciles the outcome with a preset value: a selection
// replaces it, a skip keeps it, a reset clears it.
func (o Outcome) Apply(preset string) string {
	switch o.kind {
	case KindSelection:
		return o.value
	case KindSkip:
		return preset
	default:
		return ""
	}
}

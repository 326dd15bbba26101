package telemetry

import "testing"

func TestDisabledSpanRecordsNothing(t *testing.T) {
    Disable()
    var got *Span
    s := Begin(OpAskPattern)
    End(s, func(sp Span) { got = &sp })
    if got != nil {
        t.Fatalf("expected no span to be recorded while disabled")
    }
}

func TestEnabledSpanRecordsElapsedCycles(t *testing.T) {
    Enable()
    defer Disable()

    var got *Span
    s := Begin(OpTemplateRender)
    End(s, func(sp Span) { got = &sp })
    if got == nil {
        t.Fatalf("expected a span to be recorded while enabled")
    }
    if got.EndCycle < got.StartCycle {
        t.Fatalf("expected end_cycle >= start_cycle, got start=%d end=%d", got.StartCycle, got.EndCycle)
    }
}

func TestEnabledToggle(t *testing.T) {
    Disable()
    if Enabled() {
        t.Fatalf("expected disabled after Disable()")
    }
    Enable()
    if !Enabled() {
        t.Fatalf("expected enabled after Enable()")
    }
    Disable()
}

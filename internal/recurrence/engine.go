package recurrence

import (
	"github.com/google/uuid"

	"tally/internal/core"
)

// descriptionSuffix marks generated transactions as recurring-derived.
const descriptionSuffix = " (Recurring)"

type (
	// CheckpointUpdate is the pending mutation for one template after a
	// materialization run. A zero LastGenerated leaves the checkpoint
	// untouched.
	CheckpointUpdate struct {
		LastGenerated core.Date
		Deactivate    bool
	}

	// SkippedTemplate reports a template the engine refused to process,
	// and why. One bad template never blocks the rest of the batch.
	SkippedTemplate struct {
		ID  string
		Err error
	}

	// Result is the outcome of one MaterializeDue call.
	Result struct {
		Generated   []core.Transaction
		Checkpoints map[string]CheckpointUpdate
		Skipped     []SkippedTemplate
	}
)

// MaterializeDue generates the transactions that should now exist for the
// given templates, evaluated against a single fixed now. The function is
// pure apart from id generation: state comes in as arguments, mutations
// go out as checkpoint updates for the caller to persist.
//
// For each active template the cursor starts at lastGenerated, or at the
// start date for a template that has never generated; either way the
// cursor itself counts as already covered, so generation begins one
// period later and a transaction dated exactly at the start date is never
// emitted twice. Templates whose end date has passed emit nothing and are
// marked for deactivation. When anything was emitted, the new checkpoint
// is pinned to now rather than to the last emitted date, which makes an
// immediate re-run with the same now a no-op.
func MaterializeDue(templates []core.RecurringTransaction, now core.Date) Result {
	res := Result{Checkpoints: make(map[string]CheckpointUpdate)}

	for _, tpl := range templates {
		if !tpl.IsActive {
			continue
		}

		adv, err := ForFrequency(tpl.Frequency)
		if err != nil {
			res.Skipped = append(res.Skipped, SkippedTemplate{ID: tpl.ID, Err: err})
			continue
		}
		if err := tpl.Validate(); err != nil {
			res.Skipped = append(res.Skipped, SkippedTemplate{ID: tpl.ID, Err: err})
			continue
		}

		if !tpl.EndDate.IsZero() && now.After(tpl.EndDate) {
			res.Checkpoints[tpl.ID] = CheckpointUpdate{Deactivate: true}
			continue
		}

		cursor := tpl.StartDate
		if !tpl.LastGenerated.IsZero() {
			cursor = tpl.LastGenerated
		}

		emitted := 0
		for {
			cursor = adv.Next(cursor, tpl.StartDate)
			if cursor.After(now) {
				break
			}
			if !tpl.EndDate.IsZero() && cursor.After(tpl.EndDate) {
				break
			}
			res.Generated = append(res.Generated, core.Transaction{
				ID:          uuid.NewString(),
				Amount:      tpl.Amount,
				Type:        tpl.Type,
				Category:    tpl.Category,
				Description: tpl.Description + descriptionSuffix,
				Date:        cursor,
				IsRecurring: true,
				RecurringID: tpl.ID,
			})
			emitted++
		}

		if emitted > 0 {
			res.Checkpoints[tpl.ID] = CheckpointUpdate{LastGenerated: now}
		}
	}

	return res
}

// ApplyCheckpoints folds a run's checkpoint updates back into the
// template set, returning the updated copy the caller should persist.
// Checkpoints only move forward; a template absent from the update map is
// returned unchanged.
func ApplyCheckpoints(templates []core.RecurringTransaction, updates map[string]CheckpointUpdate) []core.RecurringTransaction {
	out := make([]core.RecurringTransaction, len(templates))
	copy(out, templates)

	for i, tpl := range out {
		up, ok := updates[tpl.ID]
		if !ok {
			continue
		}
		if up.Deactivate {
			out[i].IsActive = false
		}
		if !up.LastGenerated.IsZero() && !up.LastGenerated.Before(tpl.LastGenerated) {
			out[i].LastGenerated = up.LastGenerated
		}
	}
	return out
}

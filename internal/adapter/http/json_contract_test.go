package httpadapter

import (
	"encoding/json"
	"testing"
	"time"

	"hyligotchi/internal/app/action"
	"hyligotchi/internal/app/petsync"
	"hyligotchi/internal/app/ports"
	"hyligotchi/internal/domain/pet"
)

func TestResponseJSONUsesSnakeCase(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	snap := pet.Snapshot{
		Happiness:     4,
		Hunger:        6,
		HealthLevel:   5,
		HealthStatus:  pet.HealthSick,
		NeedsCleaning: true,
		Username:      "Orange",
		Exists:        true,
		UpdatedAt:     now,
	}
	record := ports.ActionLogRecord{
		ID:         "a1",
		Identity:   "bob@wallet",
		Action:     pet.ActionFeed,
		Amount:     1,
		Outcome:    "failed",
		ErrorCode:  "remote_error",
		Message:    "Failed to feed!",
		RolledBack: true,
		TxHash:     "0xabc",
		StartedAt:  now,
		FinishedAt: now,
	}

	cases := []struct {
		name    string
		payload any
		want    []string
		notWant []string
	}{
		{
			name:    "snapshot",
			payload: snapshotResponse{Identity: "bob@wallet", Phase: petsync.PhaseReady, Snapshot: snap},
			want:    []string{"identity", "phase", "snapshot"},
			notWant: []string{"Identity", "Phase", "Snapshot"},
		},
		{
			name:    "outcome",
			payload: action.Outcome{Action: pet.ActionFeed, Message: "Fed orange!", Snapshot: snap, Phase: petsync.PhaseReady, Skipped: true, Stale: true, TxHash: "0xabc"},
			want:    []string{"action", "message", "snapshot", "phase", "skipped", "stale", "tx_hash"},
			notWant: []string{"Action", "Message", "TxHash"},
		},
		{
			name:    "history",
			payload: action.NewHistoryResponse("bob@wallet", []ports.ActionLogRecord{record}),
			want:    []string{"identity", "entries"},
			notWant: []string{"Identity", "Entries"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := json.Marshal(tc.payload)
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}
			var got map[string]any
			if err := json.Unmarshal(b, &got); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			for _, key := range tc.want {
				if _, ok := got[key]; !ok {
					t.Fatalf("expected key %q in %s", key, string(b))
				}
			}
			for _, key := range tc.notWant {
				if _, ok := got[key]; ok {
					t.Fatalf("unexpected key %q in %s", key, string(b))
				}
			}
			if snapMap, ok := got["snapshot"].(map[string]any); ok {
				for _, key := range []string{"health_level", "health_status", "needs_cleaning", "updated_at"} {
					if _, ok := snapMap[key]; !ok {
						t.Fatalf("expected nested snake_case key snapshot.%s in %s", key, string(b))
					}
				}
			}
			if tc.name == "history" {
				entries, _ := got["entries"].([]any)
				if len(entries) != 1 {
					t.Fatalf("expected one entry in %s", string(b))
				}
				entry, _ := entries[0].(map[string]any)
				for _, key := range []string{"id", "action", "error_code", "rolled_back", "tx_hash", "started_at", "finished_at"} {
					if _, ok := entry[key]; !ok {
						t.Fatalf("expected nested snake_case key entries.%s in %s", key, string(b))
					}
				}
				for _, key := range []string{"ID", "Identity", "ErrorCode", "StartedAt"} {
					if _, ok := entry[key]; ok {
						t.Fatalf("unexpected nested key entries.%s in %s", key, string(b))
					}
				}
			}
		})
	}
}

package pet

import (
	"encoding/json"
	"time"

	"github.com/tidwall/gjson"
)

type HealthStatus string

const (
	HealthHealthy HealthStatus = "Healthy"
	HealthSick    HealthStatus = "Sick"
	HealthDead    HealthStatus = "Dead"
)

type ItemKey string

const (
	ItemOranj   ItemKey = "ORANJ"
	ItemHyllar  ItemKey = "HYLLAR"
	ItemVitamin ItemKey = "VITAMIN"
)

// IndexerContract is the token contract the indexer tracks for an item.
func (k ItemKey) IndexerContract() string {
	switch k {
	case ItemOranj:
		return "oranj"
	case ItemHyllar:
		return "oxygen"
	case ItemVitamin:
		return "vitamin"
	default:
		return ""
	}
}

type FeedKind string

const (
	FeedFood   FeedKind = "food"
	FeedSweets FeedKind = "sweets"
)

func (k FeedKind) Valid() bool {
	return k == FeedFood || k == FeedSweets
}

func (k FeedKind) Item() ItemKey {
	if k == FeedSweets {
		return ItemHyllar
	}
	return ItemOranj
}

type ActionType string

const (
	ActionInitialize  ActionType = "initialize"
	ActionFeed        ActionType = "feed"
	ActionUseMedicine ActionType = "use_medicine"
	ActionClean       ActionType = "clean"
	ActionResurrect   ActionType = "resurrect"
	ActionAdvanceTime ActionType = "advance_time"
)

type Snapshot struct {
	Happiness     int          `json:"happiness"`
	Hunger        int          `json:"hunger"`
	HealthLevel   int          `json:"health_level"`
	HealthStatus  HealthStatus `json:"health_status"`
	NeedsCleaning bool         `json:"needs_cleaning"`
	Username      string       `json:"username"`
	BornAt        *uint64      `json:"born_at,omitempty"`
	Exists        bool         `json:"exists"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// RawRecord is the loosely-typed pet record the backend returns.
type RawRecord struct {
	Name     string          `json:"name"`
	Activity json.RawMessage `json:"activity,omitempty"`
	Health   HealthWire      `json:"health"`
	Food     float64         `json:"food"`
	Sweets   float64         `json:"sweets"`
	Vitamins float64         `json:"vitamins"`
	Pooped   *bool           `json:"pooped,omitempty"`
	BornAt   *uint64         `json:"born_at,omitempty"`
}

// ActivityLabel renders the activity field whether the server sent a string or a number.
func (r RawRecord) ActivityLabel() string {
	if len(r.Activity) == 0 {
		return ""
	}
	return gjson.ParseBytes(r.Activity).String()
}

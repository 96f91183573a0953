package model

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RecordID identifies an episodic record
type RecordID string

// NewRecordID returns a time ordered UUID v7 based RecordID
func NewRecordID() RecordID {
	id, err := uuid.NewV7()
	if err != nil {
		return RecordID(fmt.Sprintf("mem_%d", time.Now().UnixNano()))
	}
	return RecordID(id.String())
}

// String returns the string representation of RecordID
func (id RecordID) String() string {
	return string(id)
}

const (
	MinImportance = 0
	MaxImportance = 100
)

// EpisodicRecord is one past execution: the task, the code run for it and its result
type EpisodicRecord struct {
	ID          RecordID  `json:"id"`
	Task        string    `json:"task"`
	Code        string    `json:"code"`
	Result      string    `json:"result"`
	CreatedAt   time.Time `json:"created_at"`
	Tags        []string  `json:"tags"`
	Importance  int       `json:"importance"`
	AccessCount int       `json:"access_count"`
	LastAccess  time.Time `json:"last_access"`
}

// NewEpisodicRecord builds a record with a fresh ID, normalised tags and a
// clamped importance.
func NewEpisodicRecord(task, code, result string, tags []string, importance int, now time.Time) *EpisodicRecord {
	return &EpisodicRecord{
		ID:         NewRecordID(),
		Task:       task,
		Code:       code,
		Result:     result,
		CreatedAt:  now,
		Tags:       NormalizeTags(tags),
		Importance: ClampImportance(importance),
		LastAccess: now,
	}
}

// Content is the text embedded and indexed for the record
func (r *EpisodicRecord) Content() string {
	return r.Task + " " + r.Result
}

// Touch records one access at now
func (r *EpisodicRecord) Touch(now time.Time) {
	r.AccessCount++
	r.LastAccess = now
}

// HasTags reports whether the record's tags are a superset of tags
func (r *EpisodicRecord) HasTags(tags []string) bool {
	for _, tag := range tags {
		if !slices.Contains(r.Tags, tag) {
			return false
		}
	}
	return true
}

// Clone returns a copy of r that shares no slices with it
func (r *EpisodicRecord) Clone() *EpisodicRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.Tags = slices.Clone(r.Tags)
	return &c
}

// NormalizeTags trims, drops empty entries, deduplicates and sorts tags
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		out = append(out, tag)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// ClampImportance clamps v into [MinImportance, MaxImportance]
func ClampImportance(v int) int {
	return min(max(v, MinImportance), MaxImportance)
}

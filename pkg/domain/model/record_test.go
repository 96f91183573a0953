package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/augur/pkg/domain/model"
)

func TestNewRecordID(t *testing.T) {
	seen := make(map[model.RecordID]bool)
	for range 1000 {
		id := model.NewRecordID()
		gt.Bool(t, seen[id]).False()
		seen[id] = true
	}
}

func TestNewEpisodicRecord(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r := model.NewEpisodicRecord("list files", "ƒmain() {}", "ok", []string{" fs ", "io", "fs", ""}, 150, now)

	gt.String(t, string(r.ID)).NotEqual("")
	gt.Value(t, r.Tags).Equal([]string{"fs", "io"})
	gt.Value(t, r.Importance).Equal(100)
	gt.Value(t, r.AccessCount).Equal(0)
	gt.Value(t, r.CreatedAt).Equal(now)
	gt.Value(t, r.Content()).Equal("list files ok")
}

func TestEpisodicRecord_Touch(t *testing.T) {
	now := time.Now()
	r := model.NewEpisodicRecord("t", "c", "r", nil, 10, now)

	later := now.Add(time.Minute)
	r.Touch(later)
	r.Touch(later)
	gt.Value(t, r.AccessCount).Equal(2)
	gt.Value(t, r.LastAccess).Equal(later)
}

func TestEpisodicRecord_HasTags(t *testing.T) {
	r := model.NewEpisodicRecord("t", "c", "r", []string{"file", "network", "io"}, 50, time.Now())

	gt.Bool(t, r.HasTags(nil)).True()
	gt.Bool(t, r.HasTags([]string{"file"})).True()
	gt.Bool(t, r.HasTags([]string{"io", "file"})).True()
	gt.Bool(t, r.HasTags([]string{"file", "memory"})).False()
}

func TestEpisodicRecord_Clone(t *testing.T) {
	r := model.NewEpisodicRecord("t", "c", "r", []string{"a"}, 50, time.Now())
	c := r.Clone()
	c.Tags[0] = "b"
	c.AccessCount = 9

	gt.Value(t, r.Tags[0]).Equal("a")
	gt.Value(t, r.AccessCount).Equal(0)
}

func TestClampImportance(t *testing.T) {
	gt.Value(t, model.ClampImportance(-5)).Equal(0)
	gt.Value(t, model.ClampImportance(42)).Equal(42)
	gt.Value(t, model.ClampImportance(101)).Equal(100)
}

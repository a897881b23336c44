package cache

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/folioworks/folio/internal/model"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestMissOnEmptyCache(t *testing.T) {
	c := openTestCache(t)

	_, _, err := c.LoadList(model.EntityProjects)
	if !errors.Is(err, ErrMiss) {
		t.Errorf("err = %v, want ErrMiss", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	c := openTestCache(t)

	items := []model.Skill{
		{ID: "s1", Name: "Go", Category: "backend", Level: 90},
		{ID: "s2", Name: "PostgreSQL", Category: "storage", Level: 75},
	}
	if err := SaveItems(c, model.EntitySkills, items); err != nil {
		t.Fatal(err)
	}

	got, at, err := LoadItems[model.Skill](c, model.EntitySkills)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Name != "Go" || got[1].Level != 75 {
		t.Errorf("items = %+v", got)
	}
	if at.IsZero() || time.Since(at) > time.Minute {
		t.Errorf("fetched_at = %v", at)
	}
}

func TestSaveOverwritesPerEntity(t *testing.T) {
	c := openTestCache(t)

	if err := SaveItems(c, model.EntitySkills, []model.Skill{{ID: "s1", Name: "Go"}}); err != nil {
		t.Fatal(err)
	}
	if err := SaveItems(c, model.EntitySkills, []model.Skill{{ID: "s2", Name: "Rust"}}); err != nil {
		t.Fatal(err)
	}

	got, _, err := LoadItems[model.Skill](c, model.EntitySkills)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "Rust" {
		t.Errorf("items = %+v, want just Rust", got)
	}
}

func TestEntitiesAreIndependent(t *testing.T) {
	c := openTestCache(t)

	if err := SaveItems(c, model.EntitySkills, []model.Skill{{ID: "s1"}}); err != nil {
		t.Fatal(err)
	}
	if err := SaveItems(c, model.EntityProjects, []model.Project{{ID: "p1"}, {ID: "p2"}}); err != nil {
		t.Fatal(err)
	}

	skills, _, err := LoadItems[model.Skill](c, model.EntitySkills)
	if err != nil {
		t.Fatal(err)
	}
	projects, _, err := LoadItems[model.Project](c, model.EntityProjects)
	if err != nil {
		t.Fatal(err)
	}
	if len(skills) != 1 || len(projects) != 2 {
		t.Errorf("skills = %d, projects = %d", len(skills), len(projects))
	}
}

func TestPurgeDropsEverything(t *testing.T) {
	c := openTestCache(t)
	if err := SaveItems(c, model.EntitySkills, []model.Skill{{ID: "s1"}}); err != nil {
		t.Fatal(err)
	}

	if err := c.Purge(); err != nil {
		t.Fatal(err)
	}

	_, _, err := c.LoadList(model.EntitySkills)
	if !errors.Is(err, ErrMiss) {
		t.Errorf("err after purge = %v, want ErrMiss", err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	c, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := SaveItems(c, model.EntityProjects, []model.Project{{ID: "p1", Title: "folio"}}); err != nil {
		t.Fatal(err)
	}
	c.Close()

	c2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer c2.Close()

	got, _, err := LoadItems[model.Project](c2, model.EntityProjects)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Title != "folio" {
		t.Errorf("items = %+v", got)
	}
}

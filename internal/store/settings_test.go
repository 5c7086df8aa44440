package store

import "testing"

func TestSettingsGetUnset(t *testing.T) {
	ss := NewSettingsStore(setupTestDB(t))

	v, err := ss.Get("missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if v != "" {
		t.Errorf("value = %q, want empty", v)
	}
}

func TestSettingsSetAndUpsert(t *testing.T) {
	ss := NewSettingsStore(setupTestDB(t))

	if err := ss.Set(SettingNotifyHour, "8"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, _ := ss.Get(SettingNotifyHour)
	if v != "8" {
		t.Errorf("value = %q, want 8", v)
	}

	if err := ss.Set(SettingNotifyHour, "19"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	v, _ = ss.Get(SettingNotifyHour)
	if v != "19" {
		t.Errorf("value after upsert = %q, want 19", v)
	}
}

func TestSettingsGetAll(t *testing.T) {
	ss := NewSettingsStore(setupTestDB(t))

	ss.Set("a", "1")
	ss.Set("b", "2")

	all, err := ss.GetAll()
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 2 || all["a"] != "1" || all["b"] != "2" {
		t.Errorf("all = %v, want both keys", all)
	}
}

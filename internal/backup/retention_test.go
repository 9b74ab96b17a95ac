package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/allcarbonfree/carbonpath/internal/config"
)

func TestCountPolicy(t *testing.T) {
	now := time.Now()
	backups := []Info{
		{Path: "/b/5", CreatedAt: now},
		{Path: "/b/4", CreatedAt: now.Add(-1 * time.Hour)},
		{Path: "/b/3", CreatedAt: now.Add(-2 * time.Hour)},
		{Path: "/b/2", CreatedAt: now.Add(-3 * time.Hour)},
	}

	keep := (&CountPolicy{MaxCount: 2}).Apply(backups)
	if len(keep) != 2 || keep[0].Path != "/b/5" || keep[1].Path != "/b/4" {
		t.Errorf("CountPolicy{2}.Apply() = %+v", keep)
	}

	keep = (&CountPolicy{MaxCount: 10}).Apply(backups)
	if len(keep) != 4 {
		t.Errorf("CountPolicy{10}.Apply() kept %d, want 4", len(keep))
	}
}

func TestAgePolicy(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	backups := []Info{
		{Path: "/b/new", CreatedAt: now.Add(-1 * time.Hour)},
		{Path: "/b/day", CreatedAt: now.Add(-23 * time.Hour)},
		{Path: "/b/old", CreatedAt: now.Add(-48 * time.Hour)},
	}

	policy := &AgePolicy{MaxAge: 24 * time.Hour, now: func() time.Time { return now }}
	keep := policy.Apply(backups)
	if len(keep) != 2 {
		t.Fatalf("AgePolicy.Apply() kept %d, want 2", len(keep))
	}
	if keep[1].Path != "/b/day" {
		t.Errorf("last kept = %s, want /b/day", keep[1].Path)
	}
}

func TestCompositePolicy_Union(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	backups := []Info{
		{Path: "/b/a", CreatedAt: now.Add(-1 * time.Hour)},
		{Path: "/b/b", CreatedAt: now.Add(-2 * time.Hour)},
		{Path: "/b/c", CreatedAt: now.Add(-100 * time.Hour)},
	}
	policy := &CompositePolicy{Policies: []RetentionPolicy{
		&CountPolicy{MaxCount: 1},
		&AgePolicy{MaxAge: 3 * time.Hour, now: func() time.Time { return now }},
	}}

	keep := policy.Apply(backups)
	if len(keep) != 2 || keep[0].Path != "/b/a" || keep[1].Path != "/b/b" {
		t.Errorf("CompositePolicy.Apply() = %+v", keep)
	}
}

func TestPolicyFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.BackupConfig
		want    string
		wantErr bool
	}{
		{"none", config.BackupConfig{}, "nil", false},
		{"count", config.BackupConfig{MaxCount: 3}, "count", false},
		{"age", config.BackupConfig{MaxAge: "30d"}, "age", false},
		{"both", config.BackupConfig{MaxCount: 3, MaxAge: "2w"}, "composite", false},
		{"bad age", config.BackupConfig{MaxAge: "soon"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy, err := PolicyFromConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("PolicyFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			var got string
			switch policy.(type) {
			case nil:
				got = "nil"
			case *CountPolicy:
				got = "count"
			case *AgePolicy:
				got = "age"
			case *CompositePolicy:
				got = "composite"
			}
			if got != tt.want {
				t.Errorf("PolicyFromConfig() type = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestListAndApplyRetention(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		path := GeneratePath(dir, base.Add(time.Duration(i)*time.Hour), i%2 == 0)
		var err error
		if i%2 == 0 {
			err = WriteV2(path, testSnapshot())
		} else {
			err = WriteV1(path, testSnapshot())
		}
		if err != nil {
			t.Fatalf("write snapshot %d: %v", i, err)
		}
	}
	// unrelated files are ignored
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	backups, err := List(dir)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(backups) != 4 {
		t.Fatalf("List() = %d entries, want 4", len(backups))
	}
	if filepath.Base(backups[0].Path) != "carbonpath-backup-20250101-030000.json" {
		t.Errorf("newest = %s", filepath.Base(backups[0].Path))
	}
	if backups[0].Version != FormatV1 || backups[1].Version != FormatV2 {
		t.Errorf("versions = %d, %d", backups[0].Version, backups[1].Version)
	}

	deleted, err := ApplyRetention(dir, &CountPolicy{MaxCount: 1})
	if err != nil {
		t.Fatalf("ApplyRetention() error = %v", err)
	}
	if len(deleted) != 3 {
		t.Errorf("deleted %d, want 3", len(deleted))
	}
	backups, _ = List(dir)
	if len(backups) != 1 {
		t.Errorf("remaining %d, want 1", len(backups))
	}
}

func TestApplyRetention_NilPolicy(t *testing.T) {
	deleted, err := ApplyRetention(t.TempDir(), nil)
	if err != nil || deleted != nil {
		t.Errorf("ApplyRetention(nil) = %v, %v", deleted, err)
	}
}

func TestList_MissingDir(t *testing.T) {
	backups, err := List(filepath.Join(t.TempDir(), "nope"))
	if err != nil || backups != nil {
		t.Errorf("List(missing) = %v, %v", backups, err)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"720h", 720 * time.Hour, false},
		{"30d", 30 * 24 * time.Hour, false},
		{"2w", 14 * 24 * time.Hour, false},
		{"", 0, true},
		{"d", 0, true},
		{"5y", 0, true},
		{"xd", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDuration(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDuration(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

package transmission

import (
	"encoding/json"
	"testing"
)

func TestTorrentRecordTracksPresentFields(t *testing.T) {
	var rec TorrentRecord
	payload := `{"id":7,"name":"debian","rateDownload":1024}`
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}
	if rec.ID != 7 || rec.Name != "debian" || rec.RateDownload != 1024 {
		t.Fatalf("unexpected decode: %#v", rec.Torrent)
	}
	for _, f := range []string{"id", "name", "rateDownload"} {
		if !rec.Has(f) {
			t.Fatalf("expected field %q marked present", f)
		}
	}
	for _, f := range []string{"status", "eta", "uploadRatio"} {
		if rec.Has(f) {
			t.Fatalf("field %q was not in the payload but is marked present", f)
		}
	}
}

func TestFlagDecodesIntAndBool(t *testing.T) {
	var got struct {
		Wanted []Flag `json:"wanted"`
	}
	if err := json.Unmarshal([]byte(`{"wanted":[0,1,true,false]}`), &got); err != nil {
		t.Fatalf("unmarshal flags: %v", err)
	}
	want := []Flag{false, true, true, false}
	if len(got.Wanted) != len(want) {
		t.Fatalf("expected %d flags, got %d", len(want), len(got.Wanted))
	}
	for i := range want {
		if got.Wanted[i] != want[i] {
			t.Fatalf("flag %d = %v, want %v", i, got.Wanted[i], want[i])
		}
	}
	if err := json.Unmarshal([]byte(`{"wanted":[2]}`), &got); err == nil {
		t.Fatalf("expected error for flag value 2")
	}
}

func TestProgressCountsUnverifiedPieces(t *testing.T) {
	tor := Torrent{SizeWhenDone: 100, HaveValid: 40, HaveUnchecked: 2}
	if got := tor.Progress(); got != 0.42 {
		t.Fatalf("Progress() = %v, want 0.42", got)
	}
	empty := Torrent{}
	if got := empty.Progress(); got != 0 {
		t.Fatalf("Progress() on empty torrent = %v, want 0", got)
	}
	over := Torrent{SizeWhenDone: 10, HaveValid: 11}
	if got := over.Progress(); got != 1 {
		t.Fatalf("Progress() must clamp to 1, got %v", got)
	}
}

func TestDisplayStatus(t *testing.T) {
	announced := []TrackerStat{{HasAnnounced: true, LastAnnounceSucceeded: true}}
	cases := []struct {
		name string
		tor  Torrent
		dht  bool
		want string
	}{
		{"paused", Torrent{Status: StatusStopped}, true, "paused"},
		{"verifying", Torrent{Status: StatusChecking}, true, "verifying"},
		{"will verify", Torrent{Status: StatusCheckWait}, true, "will verify"},
		{"idle", Torrent{Status: StatusDownloading, TrackerStats: announced, MetadataPercentComplete: 1}, true, "idle"},
		{"downloading", Torrent{Status: StatusDownloading, RateDownload: 9, TrackerStats: announced, MetadataPercentComplete: 1}, true, "downloading"},
		{"metadata", Torrent{Status: StatusDownloading, RateDownload: 9, TrackerStats: announced}, true, "downloading (metadata)"},
		{"queued download", Torrent{Status: StatusDownloadWait, QueuePosition: 3, TrackerStats: announced}, true, "will download (3)"},
		{"seeding", Torrent{Status: StatusSeeding, TrackerStats: announced}, true, "seeding"},
		{"queued seed", Torrent{Status: StatusSeedWait, QueuePosition: 1, TrackerStats: announced}, true, "will seed (1)"},
		{"isolated private", Torrent{Status: StatusDownloading, IsPrivate: true}, true, "isolated"},
		{"isolated no dht", Torrent{Status: StatusDownloading}, false, "isolated"},
		{"dht saves it", Torrent{Status: StatusDownloading, MetadataPercentComplete: 1}, true, "idle"},
	}
	for _, tc := range cases {
		if got := tc.tor.DisplayStatus(tc.dht); got != tc.want {
			t.Fatalf("%s: DisplayStatus() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestFileListZipsParallelArrays(t *testing.T) {
	tor := Torrent{
		Files: []FileInfo{
			{Name: "a/one.iso", Length: 100, BytesCompleted: 50},
			{Name: "a/two.txt", Length: 10, BytesCompleted: 10},
		},
		Priorities: []Priority{PriorityHigh, PriorityLow},
		Wanted:     []Flag{true, false},
	}
	files := tor.FileList()
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	if files[0].Priority != PriorityHigh || !files[0].Wanted || files[0].Index != 0 {
		t.Fatalf("unexpected first file: %#v", files[0])
	}
	if files[1].Priority != PriorityLow || files[1].Wanted {
		t.Fatalf("unexpected second file: %#v", files[1])
	}
	if files[0].Progress() != 0.5 || files[1].Progress() != 1 {
		t.Fatalf("unexpected progress: %v %v", files[0].Progress(), files[1].Progress())
	}

	// Missing parallel arrays fall back to wanted/normal.
	bare := Torrent{Files: []FileInfo{{Name: "x", Length: 1}}}
	got := bare.FileList()
	if !got[0].Wanted || got[0].Priority != PriorityNormal {
		t.Fatalf("expected wanted/normal defaults, got %#v", got[0])
	}
}

func TestMainTrackerPrefersLowestTier(t *testing.T) {
	tor := Torrent{TrackerStats: []TrackerStat{
		{ID: 9, Tier: 1, Announce: "http://backup.example.net/announce"},
		{ID: 4, Tier: 0, Announce: "udp://tracker.example.org:6969/announce"},
		{ID: 2, Tier: 0, Announce: "http://first.example.org/announce"},
	}}
	if got := tor.MainTracker(); got != "first.example.org" {
		t.Fatalf("MainTracker() = %q, want first.example.org", got)
	}
	if got := (&Torrent{}).MainTracker(); got != "" {
		t.Fatalf("MainTracker() on trackerless torrent = %q, want empty", got)
	}
}

func TestSeedersTakesBestTrackerClaim(t *testing.T) {
	tor := Torrent{TrackerStats: []TrackerStat{
		{SeederCount: -1, LeecherCount: -1},
		{SeederCount: 12, LeecherCount: 3},
		{SeederCount: 7, LeecherCount: 9},
	}}
	if got := tor.Seeders(); got != 12 {
		t.Fatalf("Seeders() = %d, want 12", got)
	}
	if got := tor.Leechers(); got != 9 {
		t.Fatalf("Leechers() = %d, want 9", got)
	}
	if got := (&Torrent{}).Seeders(); got != -1 {
		t.Fatalf("Seeders() with no trackers = %d, want -1", got)
	}
}

func TestRecordConstructorMarksFields(t *testing.T) {
	rec := Record(Torrent{ID: 5, Name: "x", Status: StatusSeeding}, "name", "status")
	if !rec.Has("id") || !rec.Has("name") || !rec.Has("status") {
		t.Fatalf("expected id, name, status present")
	}
	if rec.Has("eta") {
		t.Fatalf("eta must not be marked present")
	}
}

package cli

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mattn/go-runewidth"

	"github.com/calvinalkan/medialib/internal/catalog"
)

func Test_RenderTable_Pads_Columns_To_Display_Width(t *testing.T) {
	t.Parallel()

	got := renderTable(
		[]string{"Title", "Artist"},
		[][]string{
			{"東京", "Shiina Ringo"},
			{"Kind of Blue", "Miles Davis"},
		},
		0,
	)

	want := []string{
		"Title        | Artist",
		"-------------|-------------",
		"東京         | Shiina Ringo",
		"Kind of Blue | Miles Davis",
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}
}

func Test_RenderTable_Truncates_Lines_When_Wider_Than_Max(t *testing.T) {
	t.Parallel()

	got := renderTable([]string{"A", "B"}, [][]string{{"short", "a rather long cell value"}}, 12)

	for _, line := range got {
		if w := runewidth.StringWidth(line); w > 12 {
			t.Errorf("line %q is %d cells wide, want <= 12", line, w)
		}
	}

	if want := "short | a r…"; got[2] != want {
		t.Errorf("row=%q, want=%q", got[2], want)
	}
}

func Test_RecordTable_Shows_Lists_And_First_Group_Field(t *testing.T) {
	t.Parallel()

	codec, err := catalog.Lookup(catalog.KindGame)
	if err != nil {
		t.Fatal(err)
	}

	var rec catalog.Record
	rec.Set("title", "Quake")
	rec.Set("shop", "GOG")
	rec.Set("finished", "Yes")

	var linux, windows catalog.Record
	linux.Set("system", "Linux")
	linux.SetList("filename", []string{"quake.sh"})
	windows.Set("system", "Windows")
	windows.SetList("filename", []string{"setup.exe"})
	rec.SetGroup("installer", []catalog.Record{linux, windows})

	got := recordTable(fieldColumns(codec), []catalog.Record{rec}, 0)

	want := []string{
		"Title | Shop | Finished | Installers",
		"------|------|----------|---------------",
		"Quake | GOG  | Yes      | Linux, Windows",
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}
}

func Test_ParseAssignments_Collects_Lists_And_Groups(t *testing.T) {
	t.Parallel()

	codec, err := catalog.Lookup(catalog.KindGame)
	if err != nil {
		t.Fatal(err)
	}

	rec, given, err := parseAssignments(codec.Fields(), []string{
		"title=Quake",
		"installer=system=Linux; filename=a.sh ;filename=b.sh",
		"installer=system=Mac;filename=c",
	})
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"title", "installer"}, given); diff != "" {
		t.Errorf("given mismatch (-want +got):\n%s", diff)
	}

	groups := rec.Group("installer")
	if len(groups) != 2 {
		t.Fatalf("want 2 installers, got %d", len(groups))
	}

	if diff := cmp.Diff([]string{"a.sh", "b.sh"}, groups[0].List("filename")); diff != "" {
		t.Errorf("filenames mismatch (-want +got):\n%s", diff)
	}

	_, _, err = parseAssignments(codec.Fields(), []string{"title=A", "title=B"})
	if err == nil {
		t.Error("duplicate scalar should fail")
	}
}

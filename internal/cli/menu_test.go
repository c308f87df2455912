package cli_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/calvinalkan/medialib/internal/cli"
)

// Book menu entries.
const (
	menuList   = "1"
	menuSearch = "2"
	menuShow   = "3"
	menuAdd    = "4"
	menuEdit   = "5"
	menuRemove = "6"
	menuBack   = "13"
)

func lines(in ...string) string {
	return strings.Join(in, "\n") + "\n"
}

func Test_Menu_Adds_Book_When_Fields_Answered(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.MustRun("init", "book")

	stdout, stderr, exitCode := c.RunWithInput(lines(
		menuAdd,
		"Dune",                 // title
		"Frank Herbert", "",    // authors
		"",                     // category is required: asked again
		"Fiction",              // category
		"9", "2 3",             // formats: invalid number, then Paperback and eBook
		duneISBN,               // isbn
		"", "", "", "", "", "", // optional scalars
		"2",                    // finished: No
		menuBack,
	), "menu", "book")

	if got, want := exitCode, 0; got != want {
		t.Fatalf("exitCode=%d, want=%d\nstderr: %s", got, want, stderr)
	}

	cli.AssertContains(t, stdout, "Book library")
	cli.AssertContains(t, stdout, "Category is required.")
	cli.AssertContains(t, stdout, "Invalid choice.")
	cli.AssertContains(t, stdout, "Added "+duneISBN+".")

	shown := c.MustRun("show", "book", duneISBN)
	cli.AssertContains(t, shown, "authors:\n  - Frank Herbert")
	cli.AssertContains(t, shown, "formats:\n  - Paperback\n  - eBook")
	cli.AssertContains(t, shown, "finished: No")
}

func Test_Menu_Refuses_Duplicate_Key_When_Adding(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.MustRun("init", "book")
	addDune(t, c)

	before := c.ReadFile(c.LibraryPath("book"))

	stdout, _, exitCode := c.RunWithInput(lines(
		menuAdd,
		"Children of Dune", "Frank Herbert", "", "Fiction", "1", duneISBN,
		"", "", "", "", "", "", "1",
		menuBack,
	), "menu", "book")

	if got, want := exitCode, 0; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	cli.AssertContains(t, stdout, `An item with key "`+duneISBN+`" already exists.`)

	if got := c.ReadFile(c.LibraryPath("book")); got != before {
		t.Errorf("library changed:\n%s", got)
	}
}

func Test_Menu_Edits_Item_Keeping_Unanswered_Fields(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.MustRun("init", "book")
	addDune(t, c)

	stdout, stderr, exitCode := c.RunWithInput(lines(
		menuEdit,
		duneISBN,
		"Dune Messiah", // title
		"",             // keep authors
		"",             // category
		"",             // formats
		"",             // isbn
		"", "", "", "", "",
		"-", // clear shop
		"",  // finished
		menuBack,
	), "menu", "book")

	if got, want := exitCode, 0; got != want {
		t.Fatalf("exitCode=%d, want=%d\nstderr: %s", got, want, stderr)
	}

	cli.AssertContains(t, stdout, "updated "+duneISBN)

	shown := c.MustRun("show", "book", duneISBN)
	cli.AssertContains(t, shown, "title: Dune Messiah")
	cli.AssertContains(t, shown, "authors:\n  - Frank Herbert")
	cli.AssertContains(t, shown, "formats:\n  - Paperback\n  - eBook")
	cli.AssertContains(t, shown, "finished: No")
	cli.AssertNotContains(t, shown, "shop:")
}

func Test_Menu_Lists_Searches_And_Removes(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.MustRun("init", "book")
	addDune(t, c)
	addAnathem(t, c)

	stdout, stderr, exitCode := c.RunWithInput(lines(
		menuList, "", "n", // default sort, ascending
		menuSearch, "2", "stephenson",
		menuShow, "000",
		menuRemove, duneISBN, "y",
		menuList, "", "",
		menuBack,
	), "menu", "book")

	if got, want := exitCode, 0; got != want {
		t.Fatalf("exitCode=%d, want=%d\nstderr: %s", got, want, stderr)
	}

	if strings.Index(stdout, "Anathem") > strings.Index(stdout, "Dune") {
		t.Errorf("list should be sorted by title:\n%s", stdout)
	}

	cli.AssertContains(t, stdout, "Neal Stephenson")
	cli.AssertContains(t, stdout, "Removed "+duneISBN+".")
	cli.AssertContains(t, stderr, "error: item not found")

	listed := c.MustRun("ls", "book")
	cli.AssertNotContains(t, listed, "Dune")
}

func Test_Menu_Adds_Game_With_Installers(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.MustRun("init", "game")

	_, stderr, exitCode := c.RunWithInput(lines(
		menuAdd,
		"Quake", // title
		"GOG",   // shop
		"1",     // finished: Yes
		"y",     // add installer
		"1",     // system: Linux
		"",      // lastupdated
		"quake.sh", "data.bin", "",
		"y",
		"3",
		"2021-06-01",
		"setup.exe", "",
		"n",
		menuBack,
	), "menu", "game")

	if got, want := exitCode, 0; got != want {
		t.Fatalf("exitCode=%d, want=%d\nstderr: %s", got, want, stderr)
	}

	shown := c.MustRun("show", "game", "Quake")
	cli.AssertContains(t, shown, "  - system: Linux\n    filename:\n      - quake.sh\n      - data.bin")
	cli.AssertContains(t, shown, "  - system: Windows\n    lastupdated: 2021-06-01")
}

func Test_Menu_Main_Menu_Lists_Enabled_Kinds(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile(filepath.Join(c.Dir, ".medialib.json"), `{"types": ["book", "video"]}`)
	c.MustRun("init", "--all")

	stdout, _, exitCode := c.RunWithInput(lines("2", menuList, "", "", menuBack, "3"), "menu")

	if got, want := exitCode, 0; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	cli.AssertContains(t, stdout, "Main menu\n  1) Book\n  2) Video\n  3) Quit")
	cli.AssertContains(t, stdout, "Video library")
	cli.AssertContains(t, stdout, "The library is empty.")
}

func Test_Menu_Exits_Cleanly_When_Input_Ends(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.MustRun("init", "music")

	stdout, stderr, exitCode := c.RunWithInput("42\n", "menu", "music")

	if got, want := exitCode, 0; got != want {
		t.Errorf("exitCode=%d, want=%d\nstderr: %s", got, want, stderr)
	}

	cli.AssertContains(t, stdout, "Invalid choice.")
}

func Test_Menu_Fails_When_Kind_Unsupported(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	_, stderr, exitCode := c.RunWithInput("", "menu", "comic")

	if got, want := exitCode, 1; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	cli.AssertContains(t, stderr, "unsupported library type")
}

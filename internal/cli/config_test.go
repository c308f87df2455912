package cli_test

import (
	"path/filepath"
	"testing"

	"github.com/calvinalkan/medialib/internal/cli"
)

func Test_Print_Config_Defaults_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("print-config")

	cli.AssertContains(t, stdout, "effective_cwd="+c.Dir)
	cli.AssertContains(t, stdout, "storage_root="+c.StorageRoot())
	cli.AssertContains(t, stdout, "library_file=library.xml")
	cli.AssertContains(t, stdout, "schema_file=library.xsd")
	cli.AssertContains(t, stdout, "log_level=warn")
	cli.AssertContains(t, stdout, "type=book "+c.LibraryPath("book"))
	cli.AssertContains(t, stdout, "type=video "+c.LibraryPath("video"))
	cli.AssertContains(t, stdout, "(defaults only)")
}

func Test_Print_Config_From_Config_File_With_Comments_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile(filepath.Join(c.Dir, ".medialib.json"), `{
		// kept next to the project
		"storage_root": "media",
		"types": ["book", "music"],
	}`)

	stdout := c.MustRun("print-config")

	cli.AssertContains(t, stdout, "storage_root="+filepath.Join(c.Dir, "media"))
	cli.AssertContains(t, stdout, "type=music "+filepath.Join(c.Dir, "media", "music", "library.xml"))
	cli.AssertNotContains(t, stdout, "type=game")
	cli.AssertContains(t, stdout, "project_config="+filepath.Join(c.Dir, ".medialib.json"))
}

func Test_Print_Config_Explicit_Config_Flag_When_Invoked(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{
		{"-c", "custom.json", "print-config"},
		{"--config=custom.json", "print-config"},
	} {
		c := cli.NewCLI(t)
		c.WriteFile(filepath.Join(c.Dir, "custom.json"), `{"library_file": "items.xml"}`)

		stdout := c.MustRun(args...)
		cli.AssertContains(t, stdout, "library_file=items.xml")
	}
}

func Test_Print_Config_Storage_Root_Override_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile(filepath.Join(c.Dir, ".medialib.json"), `{"storage_root": "from-file"}`)

	stdout := c.MustRun("--storage-root", "from-flag", "print-config")
	cli.AssertContains(t, stdout, "storage_root="+filepath.Join(c.Dir, "from-flag"))
}

func Test_Print_Config_Shows_Global_Source_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	global := filepath.Join(c.Env["XDG_CONFIG_HOME"], "medialib", "config.json")
	c.WriteFile(global, `{"log_level": "error"}`)

	stdout := c.MustRun("print-config")

	cli.AssertContains(t, stdout, "log_level=error")
	cli.AssertContains(t, stdout, "global_config="+global)
	cli.AssertNotContains(t, stdout, "(defaults only)")
}

func Test_Config_Invalid_Files_When_Invoked(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name    string
		content string
		want    string
	}{
		{name: "bad json", content: `{"types": [`, want: "invalid config"},
		{name: "unknown kind", content: `{"types": ["comic"]}`, want: "comic"},
		{name: "same files", content: `{"library_file": "a.xml", "schema_file": "a.xml"}`, want: "a.xml"},
		{name: "bad level", content: `{"log_level": "loud"}`, want: "loud"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := cli.NewCLI(t)
			c.WriteFile(filepath.Join(c.Dir, ".medialib.json"), tt.content)

			stderr := c.MustFail("ls", "book")
			cli.AssertContains(t, stderr, "error:")
			cli.AssertContains(t, stderr, tt.want)
		})
	}
}

func Test_Config_Explicit_Config_Not_Found_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("-c", "missing.json", "print-config")
	cli.AssertContains(t, stderr, "missing.json")
}

func Test_Configure_Writes_Defaults_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	path := filepath.Join(c.Dir, ".medialib.json")

	stdout := c.MustRun("configure")
	cli.AssertContains(t, stdout, "wrote "+path)
	cli.AssertContains(t, c.ReadFile(path), `"library_file"`)

	stderr := c.MustFail("configure")
	cli.AssertContains(t, stderr, "exists")

	c.MustRun("configure", "--force")

	stdout = c.MustRun("print-config")
	cli.AssertContains(t, stdout, "project_config="+path)
}

func Test_Configure_Global_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	global := filepath.Join(c.Env["XDG_CONFIG_HOME"], "medialib", "config.json")

	stdout := c.MustRun("configure", "--global")
	cli.AssertContains(t, stdout, "wrote "+global)

	stdout = c.MustRun("print-config")
	cli.AssertContains(t, stdout, "global_config="+global)
}

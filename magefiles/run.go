//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the testbed in a window with anima.toml.
func (Run) Engine() error {
	fmt.Println("Run engine...")
	if _, err := executeCmd("go", withArgs("run", ".", "-config", "anima.toml"), withStream()); err != nil {
		return err
	}
	return nil
}

// Renders a fixed number of frames with the headless backend.
func (Run) Headless() error {
	mg.Deps(Build.Engine)

	dir, err := os.MkdirTemp("", "anima-headless")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	assets, err := filepath.Abs("assets")
	if err != nil {
		return err
	}
	binary, err := filepath.Abs("bin/anima")
	if err != nil {
		return err
	}
	config := filepath.Join(dir, "anima.toml")
	content := fmt.Sprintf(`[application]
max_frames = 120
log_level = "debug"

[renderer]
backend = "headless"

[assets]
directory = %q
hot_reload = false
`, assets)
	if err := os.WriteFile(config, []byte(content), 0o644); err != nil {
		return err
	}

	fmt.Println("Run headless...")
	_, err = executeCmd(binary, withArgs("-config", "anima.toml"), withDir(dir), withStream())
	return err
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "testing"

func TestNewThemeModes(t *testing.T) {
	if !NewTheme("dark").IsDark {
		t.Error("dark mode should be dark")
	}
	if NewTheme("light").IsDark {
		t.Error("light mode should not be dark")
	}
}

func TestSetModeRebuildsStyles(t *testing.T) {
	theme := NewTheme("dark")
	darkLabel := theme.LoginLabel.GetForeground()

	theme.SetMode("light")
	if theme.IsDark {
		t.Error("SetMode(light) left IsDark true")
	}
	if theme.LoginLabel.GetForeground() == darkLabel {
		t.Error("SetMode did not rebuild styles for the new mode")
	}

	theme.SetMode("dark")
	if !theme.IsDark {
		t.Error("SetMode(dark) left IsDark false")
	}
	if theme.LoginLabel.GetForeground() != darkLabel {
		t.Error("SetMode(dark) did not restore the dark styles")
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import "testing"

func TestResolveDevelopmentBuild(t *testing.T) {
	got := Resolve(Environment{DevelopmentBuild: true, DevURL: "http://d"})
	if got != "http://d" {
		t.Errorf("Resolve = %q, want %q", got, "http://d")
	}

	// Missing dev URL falls back to the local default.
	got = Resolve(Environment{DevelopmentBuild: true})
	if got != DefaultLocalBaseURL {
		t.Errorf("Resolve = %q, want local default", got)
	}
}

func TestResolveProductionBuild(t *testing.T) {
	tests := []struct {
		name string
		env  Environment
		want string
	}{
		{
			name: "prod URL set",
			env:  Environment{ProductionBuild: true, ProdURL: "http://p"},
			want: "http://p",
		},
		{
			name: "legacy fallback",
			env:  Environment{ProductionBuild: true, LegacyBaseURL: "http://l"},
			want: "http://l",
		},
		{
			name: "nothing configured never fails",
			env:  Environment{ProductionBuild: true},
			want: DefaultLocalBaseURL,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.env); got != tt.want {
				t.Errorf("Resolve = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveAmbiguousBuild(t *testing.T) {
	tests := []struct {
		name string
		env  Environment
		want string
	}{
		{
			name: "localhost prefers dev URL",
			env:  Environment{Hostname: "localhost", DevURL: "http://d", ProdURL: "http://p"},
			want: "http://d",
		},
		{
			name: "localhost with no dev URL uses local default",
			env:  Environment{Hostname: "localhost", ProdURL: "http://p"},
			want: DefaultLocalBaseURL,
		},
		{
			name: "remote host prefers prod URL",
			env:  Environment{Hostname: "admin.example.com", DevURL: "http://d", ProdURL: "http://p"},
			want: "http://p",
		},
		{
			name: "remote host falls back to legacy",
			env:  Environment{Hostname: "admin.example.com", LegacyBaseURL: "http://l"},
			want: "http://l",
		},
		{
			name: "remote host with nothing configured",
			env:  Environment{Hostname: "admin.example.com"},
			want: DefaultLocalBaseURL,
		},
		{
			name: "private address prefers dev URL",
			env:  Environment{Hostname: "192.168.1.20", DevURL: "http://d", ProdURL: "http://p"},
			want: "http://d",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.env); got != tt.want {
				t.Errorf("Resolve = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveNeverEmpty(t *testing.T) {
	envs := []Environment{
		{},
		{DevelopmentBuild: true},
		{ProductionBuild: true},
		{Hostname: "::1"},
		{Hostname: "box.local"},
	}
	for _, env := range envs {
		if got := Resolve(env); got == "" {
			t.Errorf("Resolve(%+v) returned empty URL", env)
		}
	}
}

func TestIsLocalHostname(t *testing.T) {
	local := []string{
		"localhost", "LOCALHOST", "127.0.0.1", "::1",
		"devbox.local", "192.168.0.5", "10.1.2.3",
		"172.16.0.1", "172.31.255.254",
	}
	for _, h := range local {
		if !IsLocalHostname(h) {
			t.Errorf("IsLocalHostname(%q) = false, want true", h)
		}
	}

	remote := []string{
		"", "example.com", "admin.prod.internal", "8.8.8.8",
		"172.32.0.1", "11.0.0.1", "mylocal",
	}
	for _, h := range remote {
		if IsLocalHostname(h) {
			t.Errorf("IsLocalHostname(%q) = true, want false", h)
		}
	}
}

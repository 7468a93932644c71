// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the YaMDb API server and its
// maintenance commands.
package main

import "yamdb/cmd/yamdb/commands"

func main() {
	commands.Execute()
}

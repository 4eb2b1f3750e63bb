// Copyright 2025 The Eventify Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/eventify/eventify/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}

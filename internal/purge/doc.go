// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package purge fetches the ipfw rule table and deletes every deny rule in it.
//
// The table size is unknown until the kernel has been asked, and IP_FW_GET
// reports a truncated copy exactly like a perfectly sized one. Fetcher keeps
// growing its buffer until the kernel returns fewer bytes than were offered.
// Purger walks the snapshot up to the end-of-table rule and issues one
// IP_FW_DEL per deny rule. Neither type is safe for concurrent use.
package purge

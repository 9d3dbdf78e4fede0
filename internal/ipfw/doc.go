// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package ipfw decodes the legacy ipfw rule table returned by IP_FW_GET.
//
// A rule is a fixed-size C struct. Only three fields are interpreted here:
// the API version tag, the rule number and the flags word whose low byte is
// the rule's command. Everything else is carried as opaque bytes so a rule can
// be handed back to the kernel unchanged for deletion.
package ipfw

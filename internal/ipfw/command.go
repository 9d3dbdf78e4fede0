// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package ipfw

import "fmt"

// Command is the action half of a rule's flags word (IP_FW_F_COMMAND).
type Command uint32

// CommandMask selects the command bits of fw_flg.
const CommandMask uint32 = 0x000000ff

const (
	CommandDeny   Command = 0x00
	CommandReject Command = 0x01
	CommandAccept Command = 0x02
	CommandCount  Command = 0x03
	CommandDivert Command = 0x04
	CommandTee    Command = 0x05
	CommandSkipTo Command = 0x06
	CommandFwd    Command = 0x07
	CommandPipe   Command = 0x08
	CommandQueue  Command = 0x09
)

var commandNames = map[Command]string{
	CommandDeny:   "deny",
	CommandReject: "reject",
	CommandAccept: "allow",
	CommandCount:  "count",
	CommandDivert: "divert",
	CommandTee:    "tee",
	CommandSkipTo: "skipto",
	CommandFwd:    "fwd",
	CommandPipe:   "pipe",
	CommandQueue:  "queue",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("command(%#x)", uint32(c))
}

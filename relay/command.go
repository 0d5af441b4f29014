package relay

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"

	"murmur.town/fault"
)

// Operation is the task requested for a given audio input.
type Operation string

const (
	OpTranscription Operation = "transcription"
	OpTranslation   Operation = "translation"
	OpConversation  Operation = "conversation"
)

const (
	CommandAudio  = "audio"
	CommandUpload = "upload"
	CommandStop   = "stop"
	CommandPing   = "ping"
)

// Wire defaults, matching what the relay has always filled in for clients
// that omit them.
const (
	DefaultModel          = "Systran/faster-whisper-large-v3"
	DefaultLanguage       = "zh"
	DefaultResponseFormat = "json"
	DefaultFileType       = "webm"
)

// Command is one validated inbound message. Audio-bearing variants have all
// defaults applied; Stop and Ping carry nothing else.
type Command struct {
	Type           string
	Audio          []byte
	FileType       string
	Model          string
	Language       string
	Operation      Operation
	OutputLanguage string
	ResponseFormat string
	Temperature    float32
}

// audioBytes accepts the two client encodings of audio payloads: a JSON
// array of byte values or a base64 string.
type audioBytes []byte

func (a *audioBytes) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		// json.Unmarshal into []byte expects base64, so go through ints.
		var raw []int
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		nums := make([]uint8, len(raw))
		for i, n := range raw {
			if n < 0 || n > 255 {
				return fmt.Errorf("audio sample %d out of byte range", n)
			}
			nums[i] = uint8(n)
		}
		*a = audioBytes(nums)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return err
	}
	*a = decoded
	return nil
}

type wireCommand struct {
	Type           string     `json:"type"`
	Audio          audioBytes `json:"audio"`
	FileType       string     `json:"fileType"`
	Model          string     `json:"model"`
	Language       string     `json:"language"`
	Operation      string     `json:"operation"`
	OutputLanguage string     `json:"outputLanguage"`
	ResponseFormat string     `json:"response_format"`
	Temperature    string     `json:"temperature"`
}

// ParseCommand validates one inbound frame into a tagged Command. Every
// violation is a Protocol fault; the caller reports it and drops the frame
// without tearing the session down.
func ParseCommand(raw []byte) (*Command, error) {
	var wire wireCommand
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fault.New(fault.Protocol, "malformed command: %v", err)
	}

	switch wire.Type {
	case CommandStop, CommandPing:
		return &Command{Type: wire.Type}, nil
	case CommandAudio, CommandUpload:
		// validated below
	default:
		return nil, fault.New(fault.Protocol, "unknown command type %q", wire.Type)
	}

	if len(wire.Audio) == 0 {
		return nil, fault.New(fault.Protocol, "%s command carries no audio", wire.Type)
	}

	cmd := &Command{
		Type:           wire.Type,
		Audio:          wire.Audio,
		FileType:       wire.FileType,
		Model:          wire.Model,
		Language:       wire.Language,
		Operation:      Operation(wire.Operation),
		OutputLanguage: wire.OutputLanguage,
		ResponseFormat: wire.ResponseFormat,
	}

	if cmd.FileType == "" {
		cmd.FileType = DefaultFileType
	}
	if cmd.Model == "" {
		cmd.Model = DefaultModel
	}
	if cmd.Language == "" {
		cmd.Language = DefaultLanguage
	}
	if cmd.ResponseFormat == "" {
		cmd.ResponseFormat = DefaultResponseFormat
	}

	switch cmd.Operation {
	case "":
		cmd.Operation = OpTranscription
	case OpTranscription, OpTranslation, OpConversation:
	default:
		return nil, fault.New(fault.Protocol, "unknown operation %q", wire.Operation)
	}

	if cmd.Operation != OpTranscription && cmd.OutputLanguage == "" {
		return nil, fault.New(fault.Protocol,
			"operation %q requires outputLanguage", cmd.Operation)
	}

	if wire.Temperature != "" {
		temp, err := strconv.ParseFloat(wire.Temperature, 32)
		if err != nil {
			return nil, fault.New(fault.Protocol,
				"bad temperature %q", wire.Temperature)
		}
		cmd.Temperature = float32(temp)
	}

	return cmd, nil
}

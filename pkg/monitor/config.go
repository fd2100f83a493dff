package monitor

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/nodewatch/nodewatch/pkg/errors"
)

// configRecord is the on-disk shape of one config-file line: the three
// fields the control surface accepts, nothing else.
type configRecord struct {
	Address    string `json:"address"`
	ReviveCmd  string `json:"reviveCmd"`
	ReviveArgs string `json:"reviveArgs"`
}

// ConfigStore is the append-only, line-delimited-JSON durable record of
// monitored nodes. Load reads the whole file at startup; Append extends
// it atomically, one record per call.
type ConfigStore struct {
	path string
}

// NewConfigStore returns a store for the config file at path. It does no
// IO; the file is first opened (and created if missing) by Load or Append.
func NewConfigStore(path string) *ConfigStore {
	return &ConfigStore{path: path}
}

// Load reads every non-empty line of the config file and parses it as a
// node record, in file order. A malformed line is fatal: Load returns a
// ConfigParseError naming the offending line number.
func (s *ConfigStore) Load() ([]*MonitoredNode, error) {
	f, err := os.OpenFile(s.path, os.O_RDONLY|os.O_CREATE, 0644)
	if err != nil {
		return nil, errors.NewConfigParseError(
			fmt.Sprintf("failed to open config file %s", s.path),
			err,
			map[string]interface{}{"path": s.path},
		)
	}
	defer f.Close()

	var nodes []*MonitoredNode
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec configRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, errors.NewConfigParseError(
				fmt.Sprintf("malformed config record at line %d", lineNo),
				err,
				map[string]interface{}{"path": s.path, "line": lineNo},
			)
		}

		nodes = append(nodes, &MonitoredNode{
			Address:    rec.Address,
			ReviveCmd:  rec.ReviveCmd,
			ReviveArgs: rec.ReviveArgs,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewConfigParseError(
			fmt.Sprintf("failed to read config file %s", s.path),
			err,
			map[string]interface{}{"path": s.path},
		)
	}

	return nodes, nil
}

// Append serializes one record to a single JSON line and appends it to
// the config file, opening, writing and closing atomically with respect
// to other Append calls via the OS's O_APPEND semantics. On failure, the
// caller's in-memory state must remain unchanged — Append never leaves a
// half-written line on success.
func (s *ConfigStore) Append(node *MonitoredNode) error {
	rec := configRecord{
		Address:    node.Address,
		ReviveCmd:  node.ReviveCmd,
		ReviveArgs: node.ReviveArgs,
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return errors.NewConfigWriteError(
			"failed to serialize node record",
			err,
			map[string]interface{}{"address": node.Address},
		)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.NewConfigWriteError(
			fmt.Sprintf("failed to open config file %s for append", s.path),
			err,
			map[string]interface{}{"path": s.path, "address": node.Address},
		)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return errors.NewConfigWriteError(
			fmt.Sprintf("failed to append record to config file %s", s.path),
			err,
			map[string]interface{}{"path": s.path, "address": node.Address},
		)
	}

	return nil
}

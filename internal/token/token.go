// Package token implements the discovery token codec: a single-line,
// base64-wrapped, tagged JSON payload a remote helper prints to
// announce a freshly prepared remote repository. See spec.md section
// 4.2 and the GLOSSARY entry "Discovery token".
package token

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"regexp"
)

// Fixed small-integer JSON keys so the wire representation stays
// stable across implementations (see spec.md section 3).
const (
	KeyRemoteVersion = "0"
	KeyIsFile        = "1"
	KeyRemotePath    = "2"
	KeyRepoPath      = "3"
)

const (
	openTag  = "<xeno-init>"
	closeTag = "</xeno-init>"
)

// CurrentVersion is stamped into every encoded token.
const CurrentVersion = "0.0.2"

// tokenRegex is anchored at the start of the string (start-of-line,
// when matched against a single line) and has no end anchor, so
// trailing bytes on the same logical line do not prevent a match, per
// spec.md section 9's compatibility note. The non-greedy group stops
// at the first closing tag.
var tokenRegex = regexp.MustCompile(`^<xeno-init>(.*?)</xeno-init>`)

// Token is the decoded discovery payload.
type Token struct {
	RemoteVersion string `json:"0"`
	IsFile        bool   `json:"1"`
	RemotePath    string `json:"2"`
	RepoPath      string `json:"3"`
}

// Encode builds the token line for the given remote path and
// repository path. remotePath is inspected on disk to determine
// IsFile; callers that already know the answer should prefer
// EncodeKnown.
func Encode(remotePath, repoPath string) string {
	info, err := os.Stat(remotePath)
	isFile := err == nil && !info.IsDir()
	return EncodeKnown(isFile, remotePath, repoPath)
}

// EncodeKnown builds the token line without touching the filesystem.
func EncodeKnown(isFile bool, remotePath, repoPath string) string {
	t := Token{
		RemoteVersion: CurrentVersion,
		IsFile:        isFile,
		RemotePath:    remotePath,
		RepoPath:      repoPath,
	}

	// Marshal with the canonical small-integer keys via an explicit map
	// so the wire shape is pinned independent of struct tag ordering.
	payload := map[string]interface{}{
		KeyRemoteVersion: t.RemoteVersion,
		KeyIsFile:        t.IsFile,
		KeyRemotePath:    t.RemotePath,
		KeyRepoPath:      t.RepoPath,
	}

	j, err := json.Marshal(payload)
	if err != nil {
		// Marshaling a map of string/bool/string/string never fails.
		panic(err)
	}

	b := base64.StdEncoding.EncodeToString(j)
	return openTag + b + closeTag
}

// Decode looks for a discovery token at the start of text and returns
// the decoded payload, or nil if there is none or it is malformed.
// Decode never returns an error; malformed input simply yields nil,
// per spec.md section 4.2.
func Decode(text string) *Token {
	match := tokenRegex.FindStringSubmatch(text)
	if match == nil {
		return nil
	}

	raw, err := base64.StdEncoding.DecodeString(match[1])
	if err != nil {
		return nil
	}

	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}

	version, _ := m[KeyRemoteVersion].(string)
	isFile, _ := m[KeyIsFile].(bool)
	remotePath, _ := m[KeyRemotePath].(string)
	repoPath, _ := m[KeyRepoPath].(string)

	return &Token{
		RemoteVersion: version,
		IsFile:        isFile,
		RemotePath:    remotePath,
		RepoPath:      repoPath,
	}
}

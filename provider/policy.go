package provider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

const policyVersion = "2012-10-17"

var (
	readActions = []string{
		"s3:GetBucketLocation",
		"s3:ListBucket",
		"s3:ListBucketMultipartUploads",
		"s3:GetObject",
		"s3:GetObjectTagging",
		"s3:GetObjectVersion",
		"s3:GetObjectVersionTagging",
		"s3:ListMultipartUploadParts",
	}

	writeActions = []string{
		"s3:AbortMultipartUpload",
		"s3:DeleteObject",
		"s3:PutObject",
		"s3:PutObjectTagging",
	}
)

// statement is a single IAM policy statement.
type statement struct {
	Sid       string                       `json:"Sid,omitempty"`
	Effect    string                       `json:"Effect"`
	Principal *principal                   `json:"Principal,omitempty"`
	Action    []string                     `json:"Action"`
	Resource  []string                     `json:"Resource,omitempty"`
	Condition map[string]map[string]string `json:"Condition,omitempty"`
}

type principal struct {
	AWS     []string `json:"AWS,omitempty"`
	Service string   `json:"Service,omitempty"`
}

type policy struct {
	Version   string      `json:"Version"`
	Statement []statement `json:"Statement"`
}

func (p policy) String() string {
	b, err := json.Marshal(p)
	if err != nil {
		// policy only holds strings
		panic(err)
	}

	return string(b)
}

func bucketResources(partition, bucket string) []string {
	return []string{
		fmt.Sprintf("arn:%s:s3:::%s", partition, bucket),
		fmt.Sprintf("arn:%s:s3:::%s/*", partition, bucket),
	}
}

func s3Actions(write bool) []string {
	actions := append([]string{}, readActions...)
	if write {
		actions = append(actions, writeActions...)
	}

	return actions
}

// statementID derives a stable statement id from the role name, so granting the same role twice
// replaces the statement instead of adding a new one.
func statementID(roleARN string) string {
	name := roleARN[strings.LastIndex(roleARN, "/")+1:]

	var b strings.Builder
	b.WriteString("DataSyncAccess")
	for _, r := range name {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// mergeStatement returns doc with stmt added, replacing any statement with the same Sid. Other
// top level fields and statements of doc are kept as they are.
func mergeStatement(doc string, stmt statement) (string, error) {
	fields := map[string]json.RawMessage{}
	if strings.TrimSpace(doc) != "" {
		if err := json.Unmarshal([]byte(doc), &fields); err != nil {
			return "", fmt.Errorf("failed to parse bucket policy: %w", err)
		}
	}

	existing, err := rawStatements(fields["Statement"])
	if err != nil {
		return "", err
	}

	statements := make([]json.RawMessage, 0, len(existing)+1)
	for _, raw := range existing {
		var s struct{ Sid string }
		if err = json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("failed to parse bucket policy statement: %w", err)
		}
		if s.Sid != stmt.Sid {
			statements = append(statements, raw)
		}
	}

	added, err := json.Marshal(stmt)
	if err != nil {
		return "", err
	}
	statements = append(statements, added)

	if fields["Statement"], err = json.Marshal(statements); err != nil {
		return "", err
	}
	if _, ok := fields["Version"]; !ok {
		fields["Version"] = json.RawMessage(`"` + policyVersion + `"`)
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}

	return string(merged), nil
}

// rawStatements accepts both forms of the Statement field, a list or a single object.
func rawStatements(raw json.RawMessage) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '{' {
		return []json.RawMessage{trimmed}, nil
	}

	var statements []json.RawMessage
	if err := json.Unmarshal(trimmed, &statements); err != nil {
		return nil, fmt.Errorf("failed to parse bucket policy statements: %w", err)
	}

	return statements, nil
}

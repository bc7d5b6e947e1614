package xapi

import (
	"bytes"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"

	"github.com/dakala/h5p-xapi/pkg/domain/types"
)

// Statement is the wire shape of an xAPI statement as sent by the H5P
// browser listener. Every field is optional; absence degrades to the
// documented defaults during normalization, never to an error.
type Statement struct {
	Actor  *Agent  `json:"actor,omitempty"`
	Verb   *Verb   `json:"verb,omitempty"`
	Object *Object `json:"object,omitempty"`
	Result *Result `json:"result,omitempty"`
}

// Agent is an actor or a group member. Pointer fields distinguish an
// absent identifier channel from a present-but-empty one, matching the
// key-existence checks of the statement format.
type Agent struct {
	ObjectType string   `json:"objectType,omitempty"`
	Name       string   `json:"name,omitempty"`
	Mbox       *string  `json:"mbox,omitempty"`
	MboxSHA1   *string  `json:"mbox_sha1sum,omitempty"`
	OpenID     *string  `json:"openid,omitempty"`
	Account    *Account `json:"account,omitempty"`
	Member     []Agent  `json:"member,omitempty"`
}

// Account is the account identifier channel of an agent.
type Account struct {
	Name     string `json:"name,omitempty"`
	HomePage string `json:"homePage,omitempty"`
}

// Verb carries the action URI and its localized display labels.
type Verb struct {
	ID      string  `json:"id,omitempty"`
	Display LangMap `json:"display,omitempty"`
}

// Object is the target of the statement.
type Object struct {
	ID         string      `json:"id,omitempty"`
	Definition *Definition `json:"definition,omitempty"`
}

// Definition describes the learning content behind an object.
type Definition struct {
	Name                    LangMap        `json:"name,omitempty"`
	Description             LangMap        `json:"description,omitempty"`
	Choices                 []Choice       `json:"choices,omitempty"`
	CorrectResponsesPattern []string       `json:"correctResponsesPattern,omitempty"`
	Extensions              map[string]any `json:"extensions,omitempty"`
}

// Choice is one selectable option of an interactive content item.
type Choice struct {
	ID          string  `json:"id,omitempty"`
	Description LangMap `json:"description,omitempty"`
}

// Result carries outcome data. All fields are optional; a statement for a
// just-started activity typically has no result at all.
type Result struct {
	Response   *string `json:"response,omitempty"`
	Score      *Score  `json:"score,omitempty"`
	Completion *bool   `json:"completion,omitempty"`
	Success    *bool   `json:"success,omitempty"`
	Duration   *string `json:"duration,omitempty"`
}

// Score holds the raw and scaled score values, extracted independently.
type Score struct {
	Raw    *float64 `json:"raw,omitempty"`
	Scaled *float64 `json:"scaled,omitempty"`
}

// ParseStatement decodes a raw statement payload. An empty body or a body
// that is not a JSON object is malformed input; anything structurally
// valid is accepted and missing fields are handled downstream.
func ParseStatement(data []byte) (*Statement, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, goerr.Wrap(types.ErrMalformedInput, "empty statement payload")
	}

	var st Statement
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, goerr.Wrap(types.ErrMalformedInput, "invalid statement JSON", goerr.V("cause", err.Error()))
	}
	return &st, nil
}

package xapi_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/dakala/h5p-xapi/pkg/xapi"
)

const (
	testContentIDKey    = "http://h5p.org/x-api/h5p-local-content-id"
	testSubContentIDKey = "http://h5p.org/x-api/h5p-subContentId"
)

func newTestNormalizer() *xapi.Normalizer {
	return xapi.NewNormalizer("en-US", testContentIDKey, testSubContentIDKey)
}

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool      { return &b }

func parseTest(t *testing.T, payload string) *xapi.Statement {
	t.Helper()
	st, err := xapi.ParseStatement([]byte(payload))
	gt.NoError(t, err).Required()
	return st
}

func TestNormalizeActor(t *testing.T) {
	n := newTestNormalizer()

	t.Run("single email channel", func(t *testing.T) {
		st := &xapi.Statement{Actor: &xapi.Agent{
			Name: "Jane",
			Mbox: strPtr("mailto:jane@example.com"),
		}}
		uid := int64(7)

		out := n.Normalize(st, &uid)
		gt.Value(t, out.Actor.Identity).Equal("email: mailto:jane@example.com")
		gt.Value(t, out.Actor.Name).Equal("Jane")
		gt.Value(t, out.Actor.Members).Equal("")
		gt.Value(t, out.Actor.OwningUserID).NotNil()
		gt.Value(t, *out.Actor.OwningUserID).Equal(int64(7))
	})

	t.Run("all channels join in canonical order", func(t *testing.T) {
		st := &xapi.Statement{Actor: &xapi.Agent{
			Mbox:     strPtr("mailto:a@x.com"),
			MboxSHA1: strPtr("deadbeef"),
			OpenID:   strPtr("https://openid.example/a"),
			Account: &xapi.Account{
				Name:     "a",
				HomePage: "https://lms.example",
			},
		}}

		out := n.Normalize(st, nil)
		gt.Value(t, out.Actor.Identity).Equal(
			"email: mailto:a@x.com, email hash: deadbeef, openid: https://openid.example/a, account: a (https://lms.example)")
	})

	t.Run("account without home page has no parentheses", func(t *testing.T) {
		st := &xapi.Statement{Actor: &xapi.Agent{
			Account: &xapi.Account{Name: "a"},
		}}

		out := n.Normalize(st, nil)
		gt.Value(t, out.Actor.Identity).Equal("account: a")
	})

	t.Run("group name gets the group marker", func(t *testing.T) {
		st := &xapi.Statement{Actor: &xapi.Agent{
			ObjectType: "Group",
			Name:       "Team A",
			Member: []xapi.Agent{
				{Name: "Jane", Mbox: strPtr("mailto:jane@example.com")},
				{Mbox: strPtr("mailto:bob@example.com")},
			},
		}}

		out := n.Normalize(st, nil)
		gt.Value(t, out.Actor.Name).Equal("Team A (Group)")
		gt.Value(t, out.Actor.Members).Equal(
			"email: mailto:jane@example.com (Jane), email: mailto:bob@example.com")
	})

	t.Run("unnamed group never gets a dangling marker", func(t *testing.T) {
		st := &xapi.Statement{Actor: &xapi.Agent{ObjectType: "Group"}}

		out := n.Normalize(st, nil)
		gt.Value(t, out.Actor.Name).Equal("")
	})

	t.Run("members on a plain agent are discarded", func(t *testing.T) {
		st := &xapi.Statement{Actor: &xapi.Agent{
			ObjectType: "Agent",
			Member:     []xapi.Agent{{Name: "stray"}},
		}}

		out := n.Normalize(st, nil)
		gt.Value(t, out.Actor.Members).Equal("")
	})

	t.Run("missing actor yields empty record without user id", func(t *testing.T) {
		uid := int64(7)
		out := n.Normalize(&xapi.Statement{}, &uid)
		gt.Value(t, out.Actor.Identity).Equal("")
		gt.Value(t, out.Actor.OwningUserID).Nil()
	})
}

func TestNormalizeVerb(t *testing.T) {
	t.Run("display uses configured locale", func(t *testing.T) {
		n := xapi.NewNormalizer("de-DE", testContentIDKey, testSubContentIDKey)
		st := parseTest(t, `{
			"verb": {
				"id": "http://adlnet.gov/expapi/verbs/answered",
				"display": {"en-US": "answered", "de-DE": "beantwortet"}
			}
		}`)

		out := n.Normalize(st, nil)
		gt.Value(t, out.Verb.URI).Equal("http://adlnet.gov/expapi/verbs/answered")
		gt.Value(t, out.Verb.Display).Equal("beantwortet")
	})

	t.Run("underscore locale resolves like hyphen", func(t *testing.T) {
		n := xapi.NewNormalizer("de_DE", testContentIDKey, testSubContentIDKey)
		st := parseTest(t, `{
			"verb": {"id": "v", "display": {"de-DE": "beantwortet"}}
		}`)

		out := n.Normalize(st, nil)
		gt.Value(t, out.Verb.Display).Equal("beantwortet")
	})

	t.Run("falls back to en-US then first stored value", func(t *testing.T) {
		n := xapi.NewNormalizer("fr-FR", testContentIDKey, testSubContentIDKey)

		st := parseTest(t, `{"verb": {"id": "v", "display": {"sv-SE": "svarade", "en-US": "answered"}}}`)
		out := n.Normalize(st, nil)
		gt.Value(t, out.Verb.Display).Equal("answered")

		st = parseTest(t, `{"verb": {"id": "v", "display": {"sv-SE": "svarade", "nb-NO": "svarte"}}}`)
		out = n.Normalize(st, nil)
		gt.Value(t, out.Verb.Display).Equal("svarade")
	})

	t.Run("missing verb yields empty record", func(t *testing.T) {
		out := newTestNormalizer().Normalize(&xapi.Statement{}, nil)
		gt.Value(t, out.Verb.URI).Equal("")
		gt.Value(t, out.Verb.Display).Equal("")
	})
}

func TestNormalizeObject(t *testing.T) {
	n := newTestNormalizer()

	t.Run("definition fields flatten", func(t *testing.T) {
		st := parseTest(t, `{
			"object": {
				"id": "http://h5p.example/content/42",
				"definition": {
					"name": {"en-US": "Quiz"},
					"description": {"en-US": "A short quiz"},
					"choices": [
						{"id": "0", "description": {"en-US": "Oslo"}},
						{"id": "1", "description": {"en-US": "Bergen"}}
					],
					"correctResponsesPattern": ["0", "1[,]2"],
					"extensions": {
						"http://h5p.org/x-api/h5p-local-content-id": 42,
						"http://h5p.org/x-api/h5p-subContentId": "abc-def"
					}
				}
			}
		}`)

		out := n.Normalize(st, nil)
		gt.Value(t, out.Object.URI).Equal("http://h5p.example/content/42")
		gt.Value(t, out.Object.Name).Equal("Quiz")
		gt.Value(t, out.Object.Description).Equal("A short quiz")
		gt.Value(t, out.Object.Choices).Equal("[0] Oslo, [1] Bergen")
		gt.Value(t, out.Object.CorrectResponsesPattern).Equal("[0]: 0, [1]: 1[,]2")
		gt.Value(t, out.Object.ContentID).NotNil()
		gt.Value(t, *out.Object.ContentID).Equal("42")
		gt.Value(t, out.Object.SubContentID).NotNil()
		gt.Value(t, *out.Object.SubContentID).Equal("abc-def")
	})

	t.Run("missing extensions leave content ids nil", func(t *testing.T) {
		st := parseTest(t, `{"object": {"id": "x", "definition": {"name": {"en-US": "n"}}}}`)

		out := n.Normalize(st, nil)
		gt.Value(t, out.Object.ContentID).Nil()
		gt.Value(t, out.Object.SubContentID).Nil()
	})

	t.Run("object without definition keeps only the uri", func(t *testing.T) {
		st := &xapi.Statement{Object: &xapi.Object{ID: "x"}}

		out := n.Normalize(st, nil)
		gt.Value(t, out.Object.URI).Equal("x")
		gt.Value(t, out.Object.Name).Equal("")
	})
}

func TestNormalizeResult(t *testing.T) {
	n := newTestNormalizer()

	t.Run("full result", func(t *testing.T) {
		st := &xapi.Statement{Result: &xapi.Result{
			Response:   strPtr("0[,]1"),
			Score:      &xapi.Score{Raw: f64Ptr(8), Scaled: f64Ptr(0.8)},
			Completion: boolPtr(true),
			Success:    boolPtr(true),
			Duration:   strPtr("PT1M12S"),
		}}

		out := n.Normalize(st, nil)
		gt.Value(t, *out.Result.Response).Equal("0[,]1")
		gt.Value(t, *out.Result.ScoreRaw).Equal(8.0)
		gt.Value(t, *out.Result.ScoreScaled).Equal(0.8)
		gt.Bool(t, out.Result.Completion).True()
		gt.Bool(t, out.Result.Success).True()
		gt.Value(t, *out.Result.Duration).Equal("PT1M12S")
		gt.Bool(t, out.Result.HasData()).True()
	})

	t.Run("absent result has no data", func(t *testing.T) {
		out := n.Normalize(&xapi.Statement{}, nil)
		gt.Value(t, out.Result.Response).Nil()
		gt.Value(t, out.Result.ScoreRaw).Nil()
		gt.Bool(t, out.Result.Completion).False()
		gt.Bool(t, out.Result.HasData()).False()
	})

	t.Run("score fields extract independently", func(t *testing.T) {
		st := &xapi.Statement{Result: &xapi.Result{
			Score: &xapi.Score{Scaled: f64Ptr(0.5)},
		}}

		out := n.Normalize(st, nil)
		gt.Value(t, out.Result.ScoreRaw).Nil()
		gt.Value(t, *out.Result.ScoreScaled).Equal(0.5)
	})
}

func TestCorrelationKey(t *testing.T) {
	n := newTestNormalizer()

	t.Run("derived from actor name and content id", func(t *testing.T) {
		st := parseTest(t, `{
			"actor": {"name": "Jane", "mbox": "mailto:jane@example.com"},
			"object": {"definition": {"extensions": {"http://h5p.org/x-api/h5p-local-content-id": 42}}}
		}`)

		out := n.Normalize(st, nil)
		gt.Value(t, out.CorrelationKey()).Equal("Jane:42")
	})

	t.Run("missing content id degrades, still keyed by actor", func(t *testing.T) {
		st := &xapi.Statement{Actor: &xapi.Agent{Name: "Jane"}}

		out := n.Normalize(st, nil)
		gt.Value(t, out.CorrelationKey()).Equal("Jane:")
	})
}

func TestParseStatement(t *testing.T) {
	t.Run("empty payload is malformed", func(t *testing.T) {
		_, err := xapi.ParseStatement(nil)
		gt.Error(t, err)

		_, err = xapi.ParseStatement([]byte("  \n"))
		gt.Error(t, err)
	})

	t.Run("invalid JSON is malformed", func(t *testing.T) {
		_, err := xapi.ParseStatement([]byte("{not json"))
		gt.Error(t, err)
	})

	t.Run("structurally sparse statements are accepted", func(t *testing.T) {
		st, err := xapi.ParseStatement([]byte("{}"))
		gt.NoError(t, err).Required()
		gt.Value(t, st.Actor).Nil()
		gt.Value(t, st.Result).Nil()
	})
}

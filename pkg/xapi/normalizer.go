package xapi

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dakala/h5p-xapi/pkg/domain/model"
)

// fallbackLocale is tried after the caller's locale before giving up and
// taking the first stored value.
const fallbackLocale = "en-US"

// groupSuffix marks a flattened group actor's name.
const groupSuffix = " (Group)"

// Normalizer flattens raw statements into canonical records. It is a pure
// function of its input plus the three configuration values below; it
// performs no I/O and never fails on missing fields.
type Normalizer struct {
	locale          string
	contentIDKey    string
	subContentIDKey string
}

// NewNormalizer builds a normalizer for the given locale tag and the two
// extension keys used for content id extraction. Underscores in the
// locale are normalized to hyphens so "en_US" and "en-US" resolve alike.
func NewNormalizer(locale, contentIDKey, subContentIDKey string) *Normalizer {
	return &Normalizer{
		locale:          strings.ReplaceAll(locale, "_", "-"),
		contentIDKey:    contentIDKey,
		subContentIDKey: subContentIDKey,
	}
}

// Normalized bundles the four canonical records derived from one
// statement.
type Normalized struct {
	Actor  model.Actor
	Verb   model.Verb
	Object model.LearningObject
	Result model.Result
}

// CorrelationKey derives the key pairing this statement with a later (or
// earlier) statement for the same actor/content interaction.
func (n *Normalized) CorrelationKey() string {
	return n.Object.CorrelationKey(n.Actor.Name)
}

// Normalize flattens the statement. userID is the host's authenticated
// user and is attached to the actor only when the statement carried an
// actor object.
func (n *Normalizer) Normalize(st *Statement, userID *int64) Normalized {
	if st == nil {
		st = &Statement{}
	}
	return Normalized{
		Actor:  n.normalizeActor(st.Actor, userID),
		Verb:   n.normalizeVerb(st.Verb),
		Object: n.normalizeObject(st.Object),
		Result: normalizeResult(st.Result),
	}
}

func (n *Normalizer) normalizeActor(actor *Agent, userID *int64) model.Actor {
	if actor == nil {
		return model.Actor{}
	}
	return model.Actor{
		Identity:     flattenIFI(actor),
		Name:         groupName(actor),
		Members:      flattenMembers(actor),
		OwningUserID: userID,
	}
}

func (n *Normalizer) normalizeVerb(verb *Verb) model.Verb {
	if verb == nil {
		return model.Verb{}
	}
	return model.Verb{
		URI:     verb.ID,
		Display: n.localeString(verb.Display),
	}
}

func (n *Normalizer) normalizeObject(object *Object) model.LearningObject {
	if object == nil {
		return model.LearningObject{}
	}

	out := model.LearningObject{URI: object.ID}
	def := object.Definition
	if def == nil {
		return out
	}

	out.Name = n.localeString(def.Name)
	out.Description = n.localeString(def.Description)
	out.Choices = n.flattenChoices(def.Choices)
	out.CorrectResponsesPattern = flattenResponsesPattern(def.CorrectResponsesPattern)
	out.ContentID = extensionString(def.Extensions, n.contentIDKey)
	out.SubContentID = extensionString(def.Extensions, n.subContentIDKey)
	return out
}

func normalizeResult(result *Result) model.Result {
	if result == nil {
		return model.Result{}
	}

	out := model.Result{
		Response: result.Response,
		Duration: result.Duration,
	}
	if result.Score != nil {
		out.ScoreRaw = result.Score.Raw
		out.ScoreScaled = result.Score.Scaled
	}
	if result.Completion != nil {
		out.Completion = *result.Completion
	}
	if result.Success != nil {
		out.Success = *result.Success
	}
	return out
}

// flattenIFI joins the present inverse functional identifier channels in
// their canonical order.
func flattenIFI(agent *Agent) string {
	if agent == nil {
		return ""
	}

	var parts []string
	if agent.Mbox != nil {
		parts = append(parts, "email: "+*agent.Mbox)
	}
	if agent.MboxSHA1 != nil {
		parts = append(parts, "email hash: "+*agent.MboxSHA1)
	}
	if agent.OpenID != nil {
		parts = append(parts, "openid: "+*agent.OpenID)
	}
	if agent.Account != nil {
		parts = append(parts, "account: "+flattenAccount(agent.Account))
	}
	return strings.Join(parts, ", ")
}

func flattenAccount(account *Account) string {
	name := account.Name
	homePage := account.HomePage
	if name != "" && homePage != "" {
		homePage = " (" + homePage + ")"
	}
	return name + homePage
}

// groupName suffixes a group's non-empty name with the group marker. An
// empty name stays empty so the marker never stands alone.
func groupName(actor *Agent) string {
	name := actor.Name
	if actor.ObjectType == "Group" && name != "" {
		name += groupSuffix
	}
	return name
}

// flattenMembers renders the member list of a group. Individual agents
// have no members per the statement format, so anything the payload
// carried for them is discarded.
func flattenMembers(actor *Agent) string {
	if actor.ObjectType == "Agent" || actor.ObjectType == "" {
		return ""
	}

	var parts []string
	for i := range actor.Member {
		parts = append(parts, flattenMemberAgent(&actor.Member[i]))
	}
	return strings.Join(parts, ", ")
}

func flattenMemberAgent(member *Agent) string {
	name := member.Name
	ifi := flattenIFI(member)
	if name != "" && ifi != "" {
		name = " (" + name + ")"
	}
	return ifi + name
}

func (n *Normalizer) flattenChoices(choices []Choice) string {
	var parts []string
	for _, choice := range choices {
		parts = append(parts, "["+choice.ID+"] "+n.localeString(choice.Description))
	}
	return strings.Join(parts, ", ")
}

func flattenResponsesPattern(patterns []string) string {
	var parts []string
	for i, pattern := range patterns {
		parts = append(parts, "["+strconv.Itoa(i)+"]: "+pattern)
	}
	return strings.Join(parts, ", ")
}

// localeString resolves a language map: caller's locale first, then the
// en-US fallback, then the first value in stored order.
func (n *Normalizer) localeString(m LangMap) string {
	if m.Len() == 0 {
		return ""
	}
	if v, ok := m.Get(n.locale); ok {
		return v
	}
	if v, ok := m.Get(fallbackLocale); ok {
		return v
	}
	return m.First()
}

// extensionString reads one extension value by key. Absence yields nil,
// not empty: a missing content id degrades correlation instead of
// producing a bogus key. Numeric values are rendered as their decimal
// form since H5P emits content ids as numbers.
func extensionString(extensions map[string]any, key string) *string {
	if key == "" || extensions == nil {
		return nil
	}
	raw, ok := extensions[key]
	if !ok {
		return nil
	}

	var s string
	switch v := raw.(type) {
	case string:
		s = v
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(v)
	default:
		s = fmt.Sprintf("%v", v)
	}
	return &s
}

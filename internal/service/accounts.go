package service

import (
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// JMESPathEvaluator abstracts JMESPath operations for testability.
type JMESPathEvaluator interface {
	Validate(expr string) error
	Evaluate(expr string, data any) (any, error)
}

// jmespathLibEvaluator implements JMESPathEvaluator using go-jmespath.
type jmespathLibEvaluator struct{}

func (j jmespathLibEvaluator) Validate(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return nil
	}
	_, err := jmespath.Compile(expr)
	return err
}

func (j jmespathLibEvaluator) Evaluate(expr string, data any) (any, error) {
	return jmespath.Search(expr, data)
}

// Provider payloads are not perfectly stable: raw-shaped deliveries carry
// addresses in places the enhanced model does not. These expressions pull
// address candidates out of the decoded payload regardless of shape. Each
// must yield a string or a list of strings.
var accountExprs = []string{
	"accountData[].account",
	"transaction.message.accountKeys[]",
	"transaction.message.accountKeys[].pubkey",
	"events.nft.nfts[].mint",
}

// AccountExtractor supplements the typed account walk with JMESPath probes
// over the raw payload.
type AccountExtractor struct {
	jems JMESPathEvaluator
}

// NewAccountExtractor constructs an extractor, defaulting to the library
// evaluator.
func NewAccountExtractor(jems JMESPathEvaluator) *AccountExtractor {
	if jems == nil {
		jems = jmespathLibEvaluator{}
	}
	return &AccountExtractor{jems: jems}
}

// Extract collects address candidates from a decoded payload into the given
// set. Evaluation errors are ignored; a probe that does not apply to this
// payload shape simply contributes nothing.
func (e *AccountExtractor) Extract(decoded any, into map[string]struct{}) {
	for _, expr := range accountExprs {
		result, err := e.jems.Evaluate(expr, decoded)
		if err != nil {
			continue
		}
		collectStrings(result, into)
	}
}

func collectStrings(v any, into map[string]struct{}) {
	switch t := v.(type) {
	case string:
		if t != "" {
			into[t] = struct{}{}
		}
	case []any:
		for _, item := range t {
			collectStrings(item, into)
		}
	}
}

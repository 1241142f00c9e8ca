package prompts

import (
	"context"
	"regexp"
	"strings"

	"github.com/reusee/metaloop/generators"
	"github.com/reusee/metaloop/logs"
)

// Codes turns task descriptions into policy program text.
type Codes struct {
	generator generators.Generator
	logger    logs.Logger
}

func NewCodes(generator generators.Generator, logger logs.Logger) *Codes {
	return &Codes{
		generator: generator,
		logger:    logger,
	}
}

func (c *Codes) WriteCode(ctx context.Context, task string) (string, error) {
	text, err := c.generator.Generate(ctx, []generators.Message{
		generators.System(CodeSystem),
		generators.User(task),
	})
	if err != nil {
		return "", err
	}
	code := StripCodeFences(text)
	c.logger.DebugContext(ctx, "code generated",
		"model", c.generator.Args().Model,
		"bytes", len(code),
	)
	return code, nil
}

var fenceLine = regexp.MustCompile(`^\s*` + "```")

// StripCodeFences drops every markdown fence line and trims the result.
func StripCodeFences(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if fenceLine.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

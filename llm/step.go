package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// stepDataURLPrefix marks exported STEP content carried inline as a data URL,
// which is how the selection flow hands files to the browser.
const stepDataURLPrefix = "data:text/plain;base64,"

// GenerateSTEPFile produces an ISO-10303-21 STEP document for a selected
// design and returns it as a text data URL. The text backend authors the
// content when configured; otherwise a minimal valid skeleton is emitted.
// Like the other export paths, this never fails.
func (c *Client) GenerateSTEPFile(ctx context.Context, prompt string, designIndex int, maxTokens int) string {
	if c.configured {
		user := fmt.Sprintf(`Generate a basic STEP file for: %s
Format: ISO-10303-21;
Entity: design_%d;
Return ONLY the STEP content with no commentary.`, prompt, designIndex+1)

		reply, err := c.ChatCompletion(ctx,
			"Expert in CAD and STEP files. Generate valid STEP content for industrial designs.",
			user, maxTokens, 0.3)
		if err == nil && strings.Contains(reply, "ISO-10303-21") {
			return encodeSTEP(reply)
		}
		if err != nil {
			c.logger.Warn("STEP generation failed, using skeleton", zap.Error(err))
		} else {
			c.logger.Warn("STEP reply missing ISO-10303-21 header, using skeleton")
		}
	}

	return encodeSTEP(fallbackSTEP(prompt, designIndex))
}

// fallbackSTEP builds a minimal valid STEP document naming the design.
func fallbackSTEP(prompt string, designIndex int) string {
	name := fmt.Sprintf("design_%d", designIndex+1)
	return fmt.Sprintf(`ISO-10303-21;
HEADER;
FILE_DESCRIPTION(('Design %d'), '2;1');
FILE_NAME('%s.step','%s',('System'),(''),'MakerKit STEP Generator','v1.0','');
FILE_SCHEMA(('AUTOMOTIVE_DESIGN { 1 0 10303 214 1 1 1 }'));
ENDSEC;
DATA;
#10 = PRODUCT('%s','%s','',$);
#20 = PRODUCT_DEFINITION_FORMATION('','',#10);
#30 = PRODUCT_DEFINITION('design','',#20,#40);
#40 = PRODUCT_DEFINITION_CONTEXT('part definition',#50,'design');
#50 = APPLICATION_CONTEXT('mechanical design');
#60 = APPLICATION_PROTOCOL_DEFINITION('international standard','automotive_design',1994,#50);
ENDSEC;
END-ISO-10303-21;`,
		designIndex+1, name, time.Now().UTC().Format(time.RFC3339), name, truncateForSTEP(prompt, 50))
}

// truncateForSTEP bounds and sanitizes free text embedded in a STEP string
// literal. Apostrophes delimit STEP strings, so they are stripped.
func truncateForSTEP(text string, maxLen int) string {
	text = strings.ReplaceAll(text, "'", "")
	if len(text) > maxLen {
		return text[:maxLen]
	}
	return text
}

func encodeSTEP(content string) string {
	return stepDataURLPrefix + base64.StdEncoding.EncodeToString([]byte(content))
}

package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// RemoteResult is the wire-level answer of the classification service.
// Department is a free-form name that still has to be resolved against
// the registry; any payload that does not parse into this shape is
// treated the same as a transport failure.
type RemoteResult struct {
	IsValid           bool   `json:"isValid"`
	Department        string `json:"department"`
	Reason            string `json:"reason"`
	Confidence        string `json:"confidence"`
	ValidationMessage string `json:"validationMessage"`
}

// Service is the out-of-process classification collaborator. Classify
// must honor ctx cancellation; errors are always recoverable via the
// keyword fallback.
type Service interface {
	Classify(ctx context.Context, text string) (RemoteResult, error)
}

const defaultAnthropicModel = "claude-sonnet-4-20250514"

// AnthropicService classifies grievance text with the Anthropic API.
type AnthropicService struct {
	client anthropic.Client
	model  string
}

func NewAnthropicService(apiKey, model string, httpClient *http.Client) *AnthropicService {
	if model == "" {
		model = defaultAnthropicModel
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return &AnthropicService{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

func (s *AnthropicService) Classify(ctx context.Context, text string) (RemoteResult, error) {
	prompt := buildClassificationPrompt(text)

	message, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: 800,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		log.Printf("classifier anthropic error: %v", err)
		return RemoteResult{}, fmt.Errorf("Anthropic API error: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			log.Printf("classifier anthropic response size=%d tokens_in=%d tokens_out=%d",
				len(block.Text), message.Usage.InputTokens, message.Usage.OutputTokens)
			return parseRemoteResponse(block.Text)
		}
	}
	return RemoteResult{}, fmt.Errorf("no text content in Anthropic response")
}

func parseRemoteResponse(responseText string) (RemoteResult, error) {
	responseText = strings.TrimSpace(responseText)
	responseText = strings.TrimPrefix(responseText, "```json")
	responseText = strings.TrimPrefix(responseText, "```")
	responseText = strings.TrimSuffix(responseText, "```")
	responseText = strings.TrimSpace(responseText)

	var result RemoteResult
	if err := json.Unmarshal([]byte(responseText), &result); err != nil {
		return RemoteResult{}, fmt.Errorf("parsing classification response: %w (response: %s)", err, responseText)
	}
	if strings.TrimSpace(result.Department) == "" && result.IsValid {
		return RemoteResult{}, fmt.Errorf("classification response declared valid but named no department")
	}
	return result, nil
}

func buildClassificationPrompt(text string) string {
	return fmt.Sprintf(`You are a multilingual department classification AI for Indian public grievances.

IMPORTANT: The user's complaint may be in ANY language including:
- English
- Hindi (हिंदी)
- Hinglish (Hindi-English Mix) - e.g., "light nahi aa rahi", "bijli ka problem hai"
- Marathi, Tamil, Telugu, Bengali, Gujarati, Kannada, Malayalam, Punjabi, Urdu, Odia
- Or any mix of these languages (including Hinglish/Tanglish etc.)

Available Departments:
1. Electrical Maintenance Department - street lights, electrical poles, power supply, electricity issues, transformers
2. Water Supply & Sewerage Department - water supply, pipes, leaks, taps, drains, sewers, plumbing, sewage
3. Information Technology Services Department - wifi, internet, network, computers, connectivity, digital services
4. Infrastructure Maintenance Department - roads, buildings, construction, repairs, damages, potholes, cracks
5. Solid Waste Management Department - garbage, trash, cleanliness, waste collection, dustbins, disposal

User's complaint: "%s"

First decide whether this is a legitimate public-infrastructure complaint at all.
If it is not (spam, gibberish, personal disputes, anything no municipal department can act on),
set isValid to false and explain in validationMessage.

Otherwise ANALYZE THE COMPLAINT IN ANY LANGUAGE and match it to ONE department from the list above.

Common terms to recognize (including Hinglish):
- Light/बत्ती/light nahi aa rahi/बिजली गई/current nahi hai = Electrical
- Water/पानी/paani nahi aa raha/नल से पानी नहीं/tap me paani nahi = Water Supply
- Road/रस्ता/road kharab hai/गड्ढा है/pothole hai/सड़क टूटी = Infrastructure
- Garbage/कचरा/kachra pada hai/गंदगी/cleaning nahi ho rahi = Waste Management
- Internet/इंटरनेट/wifi nahi chal raha/network problem = IT Services

Hinglish Examples (Hindi-English mix - VERY COMMON):
- "Street light nahi jal rahi hai" = Electrical
- "Paani ka bahut problem hai yaar" = Water Supply
- "Road pe bada sa pothole aa gaya hai" = Infrastructure
- "Kachra collection nahi ho raha properly" = Waste Management
- "WiFi bahut slow chal raha hai" = IT Services

Return ONLY this JSON (no other text):
{
  "isValid": true,
  "department": "exact department name from list above",
  "reason": "brief explanation in English",
  "confidence": "high/medium/low",
  "validationMessage": ""
}`, text)
}

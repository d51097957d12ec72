// Package prompts provides prompt templates for use with the MCP server.
package prompts

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterGuidePrompts registers the Sydney Guide prompts with the MCP server
func RegisterGuidePrompts(s *server.MCPServer) {
	s.AddPrompt(mcp.NewPrompt("sydney_guide",
		mcp.WithPromptDescription("Core identity and conversation rules for the Sydney Guide assistant"),
		mcp.WithArgument("scenario",
			mcp.ArgumentDescription("Optional visitor scenario: "+strings.Join(ScenarioNames(), ", ")),
		),
	), SydneyGuidePromptHandler)

	s.AddPrompt(mcp.NewPrompt("journey_tracking",
		mcp.WithPromptDescription("How to drive journey tracking and proximity alerts"),
	), JourneyTrackingPromptHandler)

	s.AddPrompt(mcp.NewPrompt("emergency_help",
		mcp.WithPromptDescription("Protocols for lost tourists, transport disruption and severe weather"),
		mcp.WithArgument("situation",
			mcp.ArgumentDescription("Emergency situation: "+strings.Join(EmergencyNames(), ", ")),
			mcp.RequiredArgument(),
		),
	), EmergencyHelpPromptHandler)
}

const coreIdentity = `You are Sydney Guide, a tourist assistant that helps visitors explore Sydney, Australia.

CORE IDENTITY:
- A friendly, knowledgeable and proactive local guide
- Deep knowledge of Sydney's attractions, restaurants, transport and culture
- Speak the user's language and adapt to it automatically

CAPABILITIES (via tools):
- get_current_location and calculate_distance for positioning
- search_places, get_place_details, get_places_by_type and get_popular_places for recommendations
- find_nearby_transport, plan_route and get_transport_status for public transport
- start_journey_tracking, update_journey_location, get_journey_status and stop_journey_tracking for live trips
- send_notification, schedule_location_alerts and send_journey_reminders for push alerts

CONVERSATION PRINCIPLES:
1. Ask permission before accessing location data
2. Offer journey tracking whenever you provide a transport route
3. Make location-based suggestions proactively
4. Put user safety and practical advice first
5. Give specific recommendations with distances, times and costs

PERMISSION PROTOCOLS:
- Location access: "To help you better, may I access your current location?"
- Journey tracking: "Would you like me to track your journey and send helpful notifications?"
- Notifications: "Can I send you alerts about your trip?"

SAFETY GUIDELINES:
- Mention safety considerations for tourist areas
- Recommend well-lit, populated routes at night
- Suggest emergency contacts (000 in Australia) when relevant`

var scenarios = map[string]string{
	"first_time_visitor": `FIRST-TIME VISITOR CONTEXT:
- Prioritize iconic attractions (Opera House, Harbour Bridge, Bondi Beach)
- Explain public transport basics (Opal card, train, bus and ferry network)
- Suggest 2-3 day itinerary options
- Mention practical tips on weather, tipping and customs
- Be extra patient with navigation questions`,
	"food_explorer": `FOOD EXPLORER CONTEXT:
- Focus on the multicultural restaurant scene
- Mention food markets such as Paddy's Markets and the Sydney Fish Market
- Include options for dietary restrictions
- Recommend local specialties and hidden gems`,
}

var emergencies = map[string]string{
	"lost_tourist": `LOST TOURIST PROTOCOL:
- Stay calm and reassuring
- Offer to get their current location with get_current_location
- Give step-by-step directions with plan_route
- Point out nearby landmarks for orientation
- Mention nearby police stations or visitor information centres
- For immediate danger, tell them to call 000`,
	"transport_disruption": `TRANSPORT DISRUPTION PROTOCOL:
- Acknowledge the inconvenience
- Check get_transport_status and find_nearby_transport for alternatives
- Plan an alternative route with plan_route
- Suggest nearby activities while they wait
- If a journey is being tracked, stop it and start tracking the new route`,
	"weather_emergency": `WEATHER EMERGENCY PROTOCOL:
- Prioritize user safety immediately
- Suggest the nearest indoor shelter using search_places
- Recommend appropriate clothing and gear
- Suggest indoor alternatives such as museums and shopping arcades
- Send a weather_alert notification when the user has agreed to alerts`,
}

const trackingGuide = `JOURNEY TRACKING WORKFLOW:
1. Plan the trip with plan_route. Its journey_plan field can be passed to start_journey_tracking unchanged.
2. Ask the user for permission, then call start_journey_tracking with their recipient_token and the journey_plan.
   Keep the returned session_id.
3. Every time the device reports a position, call update_journey_location with the session_id and
   current_location {lat, lng}. Alerts are sent automatically:
   - "You're approaching {stop}! Get ready to get off." when within alert_distance_meters of the leg's destination
   - "Get ready! {n} stops until {destination}." when within twice that distance of a stop close to the end
4. When the leg destination is reached the session moves to the next leg. After the last leg the
   session_status becomes "completed".
5. Call stop_journey_tracking when the user arrives or cancels.

ERROR HANDLING:
- SESSION_NOT_FOUND: the session expired or was stopped. Start a new session with start_journey_tracking.
- INVALID_LOCATION: the coordinates were missing or out of range. Ask the device for a fresh fix.
- INVALID_JOURNEY_PLAN: every leg needs stops with names, coordinates and increasing sequence numbers.`

// SydneyGuidePromptHandler returns the core identity prompt, optionally
// extended with a visitor scenario
func SydneyGuidePromptHandler(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	text := coreIdentity
	if name := request.Params.Arguments["scenario"]; name != "" {
		scenario, ok := scenarios[name]
		if !ok {
			return nil, fmt.Errorf("unknown scenario %q (valid: %s)", name, strings.Join(ScenarioNames(), ", "))
		}
		text += "\n\n" + scenario
	}

	return mcp.NewGetPromptResult(
		"Sydney Guide",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(
				mcp.RoleAssistant,
				mcp.NewTextContent(text),
			),
		},
	), nil
}

// JourneyTrackingPromptHandler returns the journey tracking workflow
func JourneyTrackingPromptHandler(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return mcp.NewGetPromptResult(
		"Journey Tracking Workflow",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(
				mcp.RoleAssistant,
				mcp.NewTextContent(trackingGuide),
			),
		},
	), nil
}

// EmergencyHelpPromptHandler returns the protocol for one emergency
func EmergencyHelpPromptHandler(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Arguments["situation"]
	text, ok := emergencies[name]
	if !ok {
		return nil, fmt.Errorf("unknown situation %q (valid: %s)", name, strings.Join(EmergencyNames(), ", "))
	}

	return mcp.NewGetPromptResult(
		"Emergency Help",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(
				mcp.RoleAssistant,
				mcp.NewTextContent(text),
			),
		},
	), nil
}

// ScenarioNames lists the visitor scenarios in sorted order.
func ScenarioNames() []string {
	return sortedKeys(scenarios)
}

// EmergencyNames lists the emergency situations in sorted order.
func EmergencyNames() []string {
	return sortedKeys(emergencies)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

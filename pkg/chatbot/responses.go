package chatbot

// canned holds the scripted answers, in lookup order. "{project}" is
// replaced with the project title.
var canned = []struct {
	question string
	answer   string
}{
	{
		"Is it going to rain today?",
		"Based on my analysis of the weather sensors around the {project} site, there is a 78.3% probability of rain from about 15:00 today, with 8-12mm expected in the project zone. Waterproof tarps will be distributed at the material depots by 14:00. I recommend pausing exterior work after 14:30 and moving electrical equipment into covered zones by 14:15.",
	},
	{
		"Has the cement arrived?",
		"According to the supply chain records, the cement delivery for {project} arrived at 07:45 this morning and is being unloaded at Material Depot 2. The shipment is 42.8 tonnes of OPC-53 grade cement, about 8.6% of the weekly requirement. Unloading should finish around 11:40, after which quality testing runs before the material is released. Would you like me to notify you when testing is complete?",
	},
	{
		"Is it safe to work on the scaffold today?",
		"I must advise caution. Wind at working height on {project} is 22.7 km/h with gusts to 26.9 km/h, and the forecast shows it passing the 30 km/h scaffold limit at around 12:00. I recommend finishing scaffold work by 11:30, securing all tools and materials, and leaving at least 20 minutes for the descent. Affected crews can be moved to sheltered tasks for the high-wind period.",
	},
	{
		"There are fuel drums near the welding area, is that okay?",
		"No. Fuel drums near active welding are a critical fire hazard. Flammable materials must be kept at least 15 meters from any hot work, including welding, cutting and grinding. Please suspend hot work and relocate either the fuel storage or the welding operation now. I have flagged this for the site supervisor. Would you like the nearest approved fuel storage location?",
	},
	{
		"I need to move those chemical barrels. What equipments do I need?",
		"Based on my analysis of the hazardous materials inventory for {project}, you will need: (1) a certified forklift with a spill containment pallet; (2) PPE: chemical-resistant nitrile gloves, a full-face shield, splash goggles, chemical-resistant coveralls and respiratory protection for volatile compounds; (3) spill kits with absorbents and neutralizers for the chemicals involved. Only staff with current hazardous materials certification may take part. File a transport plan and notify logistics at least 45 minutes before the move so the route can be cleared.",
	},
	{
		"Are there any special risks I should know about today?",
		"Today's risk assessment for {project} lists: (1) heavy machinery zones in sectors B7, C3 and D5 between 09:30 and 16:45; (2) new markers along the eastern perimeter where excavation exposed unmapped utility lines; (3) slip hazards on the routes to platforms 3 and 4 after yesterday's rain; (4) a 73.8% chance that wind will stop crane work after 14:00. The overall risk index is 3.7 (moderate). Please check with your supervisor for the full briefing.",
	},
	{
		"What are the risk mitigation strategies for the project?",
		"Based on my analysis of the {project} risk framework, the key strategies are:\n\n• PPE: helmets with chin straps, safety glasses, cut-resistant gloves, steel-toed boots and high-visibility vests, with respirators in marked zones.\n\n• Hazard awareness: extra care in track installation zones, confined spaces, under cranes and near high-voltage equipment.\n\n• Procedure: follow site instructions, respect barricades and obey posted signage.\n\n• Weather: follow flood prevention measures during the monsoon season.\n\n• Maintenance: heavy machinery is serviced on a predictive schedule.\n\n• Emergency response: learn the evacuation routes, which change as construction progresses.\n\nWould you like more detail on any of these?",
	},
	{
		"I would be 2 hours late today can you please update my schedule and working hours",
		"I've registered your late arrival. Your shift on {project} is now 6 hours and focuses on reinforcement installation in Section B-24, and your safety briefing moves to 11:30. The change will show on the Updates tab within a few minutes. Would you like me to notify your section supervisor?",
	},
}

var fillerPhrases = []string{
	"Based on my analysis of the project data,",
	"According to the risk assessment models,",
	"I've calculated that",
	"The site sensors suggest",
	"After processing the relevant construction parameters,",
	"My predictive models indicate",
	"Statistical analysis of similar projects suggests",
	"I estimate with 93.7% confidence that",
}

const welcomeMessage = "Hello! I'm the project assistant for {project}. I can answer questions about weather, deliveries, safety, equipment, risks and schedules. How can I help today?"

const fallbackMessage = "I don't have enough information to give a specific answer to that. I know about construction schedules, safety protocols, risk assessments and resource allocation for {project}. Try asking about weather, material deliveries, safety procedures, equipment, risk mitigation or milestones."

// Questions returns the questions the assistant has scripted answers for
func Questions() []string {
	out := make([]string, len(canned))
	for i, c := range canned {
		out[i] = c.question
	}
	return out
}

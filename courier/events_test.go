package courier

import (
	"testing"
)

func TestSubscription_Matches(t *testing.T) {
	cases := []struct {
		name         string
		sub          Subscription
		flag         Events
		activityName string
		want         bool
	}{
		{"flag set", Subscription{Events: EventCompleted}, EventCompleted, "", true},
		{"flag not set", Subscription{Events: EventCompleted}, EventFaulted, "", false},
		{"all matches everything", Subscription{Events: EventAll}, EventActivityCompensated, "", true},
		{"all with supplemental still matches", Subscription{Events: EventAll | EventSupplemental}, EventFaulted, "", true},
		{"combined flags", Subscription{Events: EventCompleted | EventFaulted}, EventFaulted, "", true},
		{"activity filter match", Subscription{Events: EventActivityCompleted, ActivityName: "ReserveFlight"}, EventActivityCompleted, "ReserveFlight", true},
		{"activity filter case-insensitive", Subscription{Events: EventActivityCompleted, ActivityName: "reserveflight"}, EventActivityCompleted, "ReserveFlight", true},
		{"activity filter mismatch", Subscription{Events: EventActivityCompleted, ActivityName: "ReserveHotel"}, EventActivityCompleted, "ReserveFlight", false},
		{"slip level event ignores filter", Subscription{Events: EventCompleted, ActivityName: "ReserveHotel"}, EventCompleted, "", true},
		{"empty filter matches any activity", Subscription{Events: EventActivityCompleted}, EventActivityCompleted, "ReserveFlight", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.sub.Matches(tc.flag, tc.activityName); got != tc.want {
				t.Errorf("Matches(%v, %q) = %v, want %v", tc.flag, tc.activityName, got, tc.want)
			}
		})
	}
}

func TestContents_Includes(t *testing.T) {
	if !ContentAll.Includes(ContentVariables) {
		t.Error("Expected zero-value contents to include variables")
	}
	if !ContentAll.Includes(ContentItinerary) {
		t.Error("Expected zero-value contents to include itinerary")
	}
	if !ContentVariables.Includes(ContentVariables) {
		t.Error("Expected variables mask to include variables")
	}
	if ContentVariables.Includes(ContentData) {
		t.Error("Expected variables mask to exclude data")
	}
	mask := ContentArguments | ContentData
	if !mask.Includes(ContentData) || mask.Includes(ContentVariables) {
		t.Error("Expected combined mask to include data and exclude variables")
	}
}

func TestRedactMap(t *testing.T) {
	m := map[string]any{"k": "v"}

	if got := redactMap(ContentVariables, ContentVariables, m); got["k"] != "v" {
		t.Errorf("Expected section delivered verbatim, got %v", got)
	}

	got := redactMap(ContentData, ContentVariables, m)
	if got == nil {
		t.Fatal("Expected empty map, got nil")
	}
	if len(got) != 0 {
		t.Errorf("Expected redacted section to be empty, got %v", got)
	}

	// A nil section included by the mask is still delivered as an empty
	// map, never as null.
	if got := redactMap(ContentAll, ContentVariables, nil); got == nil {
		t.Error("Expected empty map for nil included section, got nil")
	}
}

func TestRedactItinerary(t *testing.T) {
	itinerary := []Activity{{Name: "A", Address: "queue:a"}}

	if got := redactItinerary(ContentItinerary, itinerary); len(got) != 1 {
		t.Errorf("Expected itinerary delivered verbatim, got %v", got)
	}

	got := redactItinerary(ContentVariables, itinerary)
	if got == nil {
		t.Fatal("Expected empty itinerary, got nil")
	}
	if len(got) != 0 {
		t.Errorf("Expected redacted itinerary to be empty, got %v", got)
	}

	if got := redactItinerary(ContentAll, nil); got == nil {
		t.Error("Expected empty itinerary for nil included section, got nil")
	}
}

package models

import "testing"

func intPtr(i int) *int { return &i }

func TestInsertPosition(t *testing.T) {
	tests := []struct {
		name          string
		count         int
		requested     *int
		wantPosition  int
		wantShiftFrom int
	}{
		{"append to empty list", 0, nil, 0, -1},
		{"append to existing list", 3, nil, 3, -1},
		{"insert at head shifts everything", 3, intPtr(0), 0, 0},
		{"insert in the middle shifts tail", 5, intPtr(2), 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			position, shiftFrom := InsertPosition(tt.count, tt.requested)
			if position != tt.wantPosition || shiftFrom != tt.wantShiftFrom {
				t.Errorf("InsertPosition(%d, %v) = (%d, %d), want (%d, %d)",
					tt.count, tt.requested, position, shiftFrom, tt.wantPosition, tt.wantShiftFrom)
			}
		})
	}
}

func channelFixture() []Channel {
	return []Channel{
		{ID: "a", Position: 0, Type: ChannelTypeText},
		{ID: "b", Position: 1, Type: ChannelTypeText},
		{ID: "c", Position: 2, Type: ChannelTypeText},
		{ID: "d", Position: 3, Type: ChannelTypeText},
	}
}

func assertOrder(t *testing.T, channels []Channel, wantIDs ...string) {
	t.Helper()
	if len(channels) != len(wantIDs) {
		t.Fatalf("got %d channels, want %d", len(channels), len(wantIDs))
	}
	for i, id := range wantIDs {
		if channels[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, channels[i].ID, id)
		}
		if channels[i].Position != i {
			t.Errorf("channel %s: position = %d, want %d (dense sequence)", channels[i].ID, channels[i].Position, i)
		}
	}
}

func TestReorderPositions(t *testing.T) {
	t.Run("move forward", func(t *testing.T) {
		result := ReorderPositions(channelFixture(), "a", 2)
		assertOrder(t, result, "b", "c", "a", "d")
	})

	t.Run("move backward", func(t *testing.T) {
		result := ReorderPositions(channelFixture(), "d", 0)
		assertOrder(t, result, "d", "a", "b", "c")
	})

	t.Run("target beyond end is clamped", func(t *testing.T) {
		result := ReorderPositions(channelFixture(), "a", 99)
		assertOrder(t, result, "b", "c", "d", "a")
	})

	t.Run("negative target is clamped to head", func(t *testing.T) {
		result := ReorderPositions(channelFixture(), "c", -5)
		assertOrder(t, result, "c", "a", "b", "d")
	})

	t.Run("unknown channel leaves order intact", func(t *testing.T) {
		result := ReorderPositions(channelFixture(), "zzz", 1)
		if len(result) != 4 {
			t.Fatalf("got %d channels, want 4", len(result))
		}
		for i, id := range []string{"a", "b", "c", "d"} {
			if result[i].ID != id {
				t.Errorf("position %d: got %s, want %s", i, result[i].ID, id)
			}
		}
	})

	t.Run("does not mutate input", func(t *testing.T) {
		input := channelFixture()
		ReorderPositions(input, "a", 3)
		if input[0].ID != "a" || input[0].Position != 0 {
			t.Error("input slice was mutated")
		}
	})
}

func TestRenumberPositions(t *testing.T) {
	// Silme sonrası boşluklu dizi: 0, 2, 5
	channels := []Channel{
		{ID: "a", Position: 0},
		{ID: "c", Position: 5},
		{ID: "b", Position: 2},
	}

	result := RenumberPositions(channels)
	assertOrder(t, result, "a", "b", "c")
}

func TestVisibleChannels(t *testing.T) {
	cat := strPtr("cat1")
	channels := []Channel{
		{ID: "cat1", Position: 0, Type: ChannelTypeCategory},
		{ID: "general", Position: 1, Type: ChannelTypeText, CategoryID: cat},
		{ID: "secret", Position: 2, Type: ChannelTypeText, CategoryID: cat},
		{ID: "cat2", Position: 3, Type: ChannelTypeCategory},
		{ID: "lonely", Position: 4, Type: ChannelTypeText, CategoryID: strPtr("cat2")},
		{ID: "free", Position: 5, Type: ChannelTypeVoice},
	}

	canView := func(channelID string) bool {
		return channelID != "secret" && channelID != "lonely"
	}

	visible := VisibleChannels(channels, canView)

	// secret görünmez; cat2 görünmez (tek kanalı lonely görünmediği için);
	// cat1 görünür (general ona bağlı ve görünür).
	want := []string{"cat1", "general", "free"}
	if len(visible) != len(want) {
		t.Fatalf("got %d channels %v, want %d", len(visible), ids(visible), len(want))
	}
	for i, id := range want {
		if visible[i].ID != id {
			t.Errorf("index %d: got %s, want %s", i, visible[i].ID, id)
		}
	}
}

func TestVisibleChannelsEmptyServer(t *testing.T) {
	visible := VisibleChannels(nil, func(string) bool { return true })
	if len(visible) != 0 {
		t.Errorf("expected empty list, got %d", len(visible))
	}
}

func ids(channels []Channel) []string {
	out := make([]string, len(channels))
	for i := range channels {
		out[i] = channels[i].ID
	}
	return out
}

func TestUpdateChannelRequestUnmarshal(t *testing.T) {
	t.Run("absent fields leave flags unset", func(t *testing.T) {
		var req UpdateChannelRequest
		if err := req.UnmarshalJSON([]byte(`{"name":"yeni"}`)); err != nil {
			t.Fatal(err)
		}
		if req.CategorySet || req.DefaultRoleSet {
			t.Error("presence flags should be false for absent fields")
		}
		if req.Name == nil || *req.Name != "yeni" {
			t.Error("name not parsed")
		}
	})

	t.Run("explicit null sets flag with nil value", func(t *testing.T) {
		var req UpdateChannelRequest
		if err := req.UnmarshalJSON([]byte(`{"category_id":null}`)); err != nil {
			t.Fatal(err)
		}
		if !req.CategorySet {
			t.Error("CategorySet should be true for explicit null")
		}
		if req.CategoryID != nil {
			t.Error("CategoryID should be nil for explicit null")
		}
	})

	t.Run("value sets flag and value", func(t *testing.T) {
		var req UpdateChannelRequest
		if err := req.UnmarshalJSON([]byte(`{"default_role_id":"r1"}`)); err != nil {
			t.Fatal(err)
		}
		if !req.DefaultRoleSet || req.DefaultRoleID == nil || *req.DefaultRoleID != "r1" {
			t.Error("default_role_id not parsed with presence flag")
		}
	})
}

func TestCreateChannelRequestValidate(t *testing.T) {
	valid := CreateChannelRequest{Name: "genel sohbet", Type: "text"}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}

	badType := CreateChannelRequest{Name: "x", Type: "forum"}
	if err := badType.Validate(); err == nil {
		t.Error("unknown channel type should be rejected")
	}

	nested := CreateChannelRequest{Name: "alt", Type: "category", CategoryID: strPtr("cat1")}
	if err := nested.Validate(); err == nil {
		t.Error("category inside category should be rejected")
	}

	negative := CreateChannelRequest{Name: "x", Type: "text", Position: intPtr(-1)}
	if err := negative.Validate(); err == nil {
		t.Error("negative position should be rejected")
	}
}

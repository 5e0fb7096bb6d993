package moderation

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"timeout-helper/model"
	"timeout-helper/utils/database"
	"timeout-helper/utils/duration"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewMessage(t *testing.T) {
	msg, ok := PreviewMessage(" 3d6h ")
	require.True(t, ok)
	assert.Equal(t, "`3d6h` → **3 days 6 hours** (`3d 6h`)", msg)

	msg, ok = PreviewMessage("soon")
	assert.False(t, ok)
	assert.Contains(t, msg, "`soon` is not a valid duration")
	assert.Contains(t, msg, UsageHint)

	_, ok = PreviewMessage("")
	assert.False(t, ok)
}

func TestUserMessage(t *testing.T) {
	_, tooLong := ResolveDuration("29d", 0, DiscordTimeoutLimit)

	for _, tt := range []struct {
		err  error
		want string
	}{
		{fmt.Errorf("%w: %q", duration.ErrInvalidDuration, "x"), "That is not a valid duration. " + UsageHint},
		{ErrDurationRequired, "A duration is required. " + UsageHint},
		{ErrNotPositive, "Duration must be longer than zero."},
		{tooLong, "Duration is too long: 4 weeks 1 day exceeds the maximum of 4 weeks."},
		{ErrSelfTarget, "You cannot use this command on yourself."},
		{fmt.Errorf("%w: abc", database.ErrRecordNotFound), "No case with that ID in this server."},
		{fmt.Errorf("%w: abc", database.ErrAmbiguousCase), "That case ID matches several cases, please give more of it."},
		{fmt.Errorf("%w: boom", ErrDiscord), "Discord rejected the request. Check the bot's role position and permissions."},
		{errors.New("anything"), "Something went wrong, please try again later."},
	} {
		assert.Equal(t, tt.want, UserMessage(tt.err))
	}
}

func TestResultEmbed(t *testing.T) {
	until := testNow.Add(6 * time.Hour)
	embed := ResultEmbed(&Result{
		Record: model.ModerationRecord{
			CaseID: "0123456789abcdef", UserID: "u", ModeratorID: "m",
			Action: model.ActionTempRole, RoleID: "r", Reason: "cool down",
		},
		Duration: 6 * time.Hour,
		Until:    until,
		Recorded: true,
	})

	assert.Equal(t, "Temporary role granted", embed.Title)
	assert.Equal(t, "Case 01234567", embed.Footer.Text)

	values := map[string]string{}
	for _, f := range embed.Fields {
		values[f.Name] = f.Value
	}
	assert.Equal(t, "<@u>", values["Member"])
	assert.Equal(t, "<@&r>", values["Role"])
	assert.Equal(t, "6 hours (`6h`)", values["Duration"])
	assert.Equal(t, fmt.Sprintf("<t:%d:f> (<t:%d:R>)", until.Unix(), until.Unix()), values["Ends"])
	assert.Equal(t, "cool down", values["Reason"])
}

func TestResultEmbedNotRecorded(t *testing.T) {
	embed := ResultEmbed(&Result{Record: model.ModerationRecord{CaseID: "abc", Action: model.ActionUntimeout}})
	assert.Equal(t, "Timeout lifted", embed.Title)
	assert.Equal(t, "Case abc (not recorded)", embed.Footer.Text)
	assert.Len(t, embed.Fields, 2)
}

func TestHistoryEmbed(t *testing.T) {
	empty := HistoryEmbed("u", nil, nil)
	assert.Equal(t, "<@u> has no moderation history.", empty.Description)
	assert.Empty(t, empty.Fields)

	embed := HistoryEmbed("u", []model.ModerationRecord{{
		CaseID: "deadbeefcafe", Action: model.ActionTimeout, ModeratorID: "m",
		DurationMS: (90 * time.Minute).Milliseconds(), Reason: "spam", CreatedAt: testNow,
		ExpiresAt: sql.NullTime{Time: testNow.Add(90 * time.Minute), Valid: true},
	}}, []model.TimedTask{{RoleID: "muted", RemoveAt: testNow.Add(duration.Day)}})
	assert.Contains(t, embed.Description, "`deadbeef` **timeout** 1 hour 30 minutes by <@m>")
	assert.Contains(t, embed.Description, fmt.Sprintf("<t:%d:R> - spam", testNow.Unix()))
	require.Len(t, embed.Fields, 1)
	assert.Equal(t, "Temporary roles", embed.Fields[0].Name)
	assert.Equal(t, fmt.Sprintf("<@&muted> removed <t:%d:R>\n", testNow.Add(duration.Day).Unix()), embed.Fields[0].Value)
}

func TestCaseEmbed(t *testing.T) {
	embed := CaseEmbed(model.ModerationRecord{
		CaseID: "0123456789abcdef", Action: model.ActionTempRole, UserID: "u", ModeratorID: "m", RoleID: "r",
		DurationMS: (36 * time.Hour).Milliseconds(), Input: "1d 12h", Reason: "cool down", CreatedAt: testNow,
		ExpiresAt: sql.NullTime{Time: testNow.Add(36 * time.Hour), Valid: true},
	})

	assert.Equal(t, "Case 01234567", embed.Title)
	assert.Equal(t, "0123456789abcdef", embed.Footer.Text)
	values := map[string]string{}
	for _, f := range embed.Fields {
		values[f.Name] = f.Value
	}
	assert.Equal(t, model.ActionTempRole, values["Action"])
	assert.Equal(t, "<@&r>", values["Role"])
	assert.Equal(t, "1 day 12 hours (`1d 12h`) from `1d 12h`", values["Duration"])
	assert.Equal(t, fmt.Sprintf("<t:%d:f>", testNow.Add(36*time.Hour).Unix()), values["Ends"])
	assert.Equal(t, "cool down", values["Reason"])

	bare := CaseEmbed(model.ModerationRecord{CaseID: "c", Action: model.ActionUntimeout})
	assert.Len(t, bare.Fields, 3)
}

func TestNoticeEmbed(t *testing.T) {
	until := testNow.Add(duration.Day)
	embed := NoticeEmbed("Lounge", &Result{
		Record:   model.ModerationRecord{CaseID: "c", Action: model.ActionTimeout, Reason: "spam"},
		Duration: duration.Day,
		Until:    until,
	})
	assert.Equal(t, "You have been timed out", embed.Title)
	assert.Equal(t, fmt.Sprintf("You were timed out in Lounge for 1 day. It ends <t:%d:R>.", until.Unix()), embed.Description)
	require.Len(t, embed.Fields, 1)
	assert.Equal(t, "spam", embed.Fields[0].Value)

	lifted := NoticeEmbed("", &Result{Record: model.ModerationRecord{Action: model.ActionUntimeout}})
	assert.Equal(t, "Your timeout in the server has been lifted.", lifted.Description)
	assert.Empty(t, lifted.Fields)
}

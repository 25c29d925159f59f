package panel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruhich/point-bot/internal/common"
	"github.com/ruhich/point-bot/internal/features/chats"
	"github.com/ruhich/point-bot/internal/features/karma"
)

const superAdminID int64 = 777

type fakeAdmins struct {
	delegated map[[2]int64]bool
	addCalls  int
}

func newFakeAdmins() *fakeAdmins {
	return &fakeAdmins{delegated: make(map[[2]int64]bool)}
}

func (f *fakeAdmins) IsSuperAdmin(userID int64) bool { return userID == superAdminID }

func (f *fakeAdmins) AddAdmin(_ context.Context, userID, chatID int64) error {
	f.delegated[[2]int64{userID, chatID}] = true
	f.addCalls++
	return nil
}

func (f *fakeAdmins) RemoveAdmin(_ context.Context, userID, chatID int64) error {
	delete(f.delegated, [2]int64{userID, chatID})
	return nil
}

func (f *fakeAdmins) ListAdmins(_ context.Context, chatID int64) ([]int64, error) {
	var out []int64
	for key := range f.delegated {
		if key[1] == chatID {
			out = append(out, key[0])
		}
	}
	return out, nil
}

type fakeKarma struct {
	resets []int64
	report []karma.DayActivity
}

func (f *fakeKarma) ResetChatScores(_ context.Context, chatID int64) error {
	f.resets = append(f.resets, chatID)
	return nil
}

func (f *fakeKarma) MonthlyReport(_ context.Context, _ int64, _ int, _ time.Month) ([]karma.DayActivity, error) {
	return f.report, nil
}

type fakeChats struct{ list []chats.Chat }

func (f *fakeChats) List(_ context.Context) ([]chats.Chat, error) { return f.list, nil }

func newTestPanel() (*Service, *fakeAdmins, *fakeKarma) {
	adminsFake := newFakeAdmins()
	karmaFake := &fakeKarma{}
	chatsFake := &fakeChats{list: []chats.Chat{{ChatID: 100, Title: "Флудилка"}}}
	svc := NewService(adminsFake, karmaFake, chatsFake, time.UTC)
	svc.now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }
	return svc, adminsFake, karmaFake
}

func TestAddAdminTwoStepFlow(t *testing.T) {
	svc, adminsFake, _ := newTestPanel()
	ctx := context.Background()

	list, err := svc.ChooseOp(ctx, superAdminID, OpAddAdmin)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, StageAwaitingChat, svc.Session(superAdminID).Stage)

	outcome, err := svc.ChooseChat(ctx, superAdminID, 100)
	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.True(t, outcome.AwaitingUser)
	sess := svc.Session(superAdminID)
	assert.Equal(t, StageAwaitingTargetUser, sess.Stage)
	assert.Equal(t, int64(100), sess.SelectedChatID)

	outcome, err = svc.SubmitText(ctx, superAdminID, "42")
	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.Equal(t, int64(42), outcome.TargetUserID)
	assert.True(t, adminsFake.delegated[[2]int64{42, 100}])
	assert.Equal(t, StageIdle, svc.Session(superAdminID).Stage)
}

func TestRemoveAdminTwoStepFlow(t *testing.T) {
	svc, adminsFake, _ := newTestPanel()
	ctx := context.Background()
	adminsFake.delegated[[2]int64{42, 100}] = true

	_, err := svc.ChooseOp(ctx, superAdminID, OpRemoveAdmin)
	require.NoError(t, err)
	_, err = svc.ChooseChat(ctx, superAdminID, 100)
	require.NoError(t, err)

	outcome, err := svc.SubmitText(ctx, superAdminID, "42")
	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.False(t, adminsFake.delegated[[2]int64{42, 100}])
	assert.Equal(t, StageIdle, svc.Session(superAdminID).Stage)
}

func TestMalformedUserEntryClearsSession(t *testing.T) {
	svc, adminsFake, _ := newTestPanel()
	ctx := context.Background()

	_, err := svc.ChooseOp(ctx, superAdminID, OpAddAdmin)
	require.NoError(t, err)
	_, err = svc.ChooseChat(ctx, superAdminID, 100)
	require.NoError(t, err)

	outcome, err := svc.SubmitText(ctx, superAdminID, "не число")
	assert.ErrorIs(t, err, common.ErrBadInput)
	assert.Nil(t, outcome)
	assert.Zero(t, adminsFake.addCalls)
	// Повтор на месте не поддерживается: сессия сброшена, начинать заново.
	assert.Equal(t, StageIdle, svc.Session(superAdminID).Stage)
}

func TestMalformedChatEntryClearsSession(t *testing.T) {
	svc, _, _ := newTestPanel()
	ctx := context.Background()

	_, err := svc.ChooseOp(ctx, superAdminID, OpAddAdmin)
	require.NoError(t, err)

	_, err = svc.SubmitText(ctx, superAdminID, "abc")
	assert.ErrorIs(t, err, common.ErrBadInput)
	assert.Equal(t, StageIdle, svc.Session(superAdminID).Stage)
}

func TestDirectNumericChatEntry(t *testing.T) {
	svc, _, _ := newTestPanel()
	ctx := context.Background()

	_, err := svc.ChooseOp(ctx, superAdminID, OpAddAdmin)
	require.NoError(t, err)

	// Чата нет в реестре — прямой ввод ID всё равно принимается.
	outcome, err := svc.SubmitText(ctx, superAdminID, "-100987")
	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.True(t, outcome.AwaitingUser)
	assert.Equal(t, int64(-100987), svc.Session(superAdminID).SelectedChatID)
}

func TestAwaitingUserWithoutChatReportsAndClears(t *testing.T) {
	svc, adminsFake, _ := newTestPanel()

	// Повреждённая сессия: шаг ввода пользователя без выбранного чата.
	svc.setSession(superAdminID, &Session{Stage: StageAwaitingTargetUser, Op: OpAddAdmin})

	outcome, err := svc.SubmitText(context.Background(), superAdminID, "42")
	assert.ErrorIs(t, err, common.ErrNoChatSelected)
	assert.Nil(t, outcome)
	assert.Zero(t, adminsFake.addCalls)
	assert.Equal(t, StageIdle, svc.Session(superAdminID).Stage)
}

func TestNonSuperAdminRejectedEverywhere(t *testing.T) {
	svc, _, karmaFake := newTestPanel()
	ctx := context.Background()
	const intruder int64 = 666

	assert.ErrorIs(t, svc.Open(intruder), common.ErrNotSuperAdmin)

	_, err := svc.ChooseOp(ctx, intruder, OpResetScores)
	assert.ErrorIs(t, err, common.ErrNotSuperAdmin)

	_, err = svc.ChooseChat(ctx, intruder, 100)
	assert.ErrorIs(t, err, common.ErrNotSuperAdmin)

	_, err = svc.SubmitText(ctx, intruder, "100")
	assert.ErrorIs(t, err, common.ErrNotSuperAdmin)

	assert.Empty(t, karmaFake.resets)
	assert.Equal(t, StageIdle, svc.Session(intruder).Stage)
}

func TestListAdminsSingleStep(t *testing.T) {
	svc, adminsFake, _ := newTestPanel()
	ctx := context.Background()
	adminsFake.delegated[[2]int64{42, 100}] = true

	_, err := svc.ChooseOp(ctx, superAdminID, OpListAdmins)
	require.NoError(t, err)

	outcome, err := svc.ChooseChat(ctx, superAdminID, 100)
	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.Equal(t, []int64{42}, outcome.Admins)
	assert.Equal(t, StageIdle, svc.Session(superAdminID).Stage)
}

func TestResetScoresSingleStep(t *testing.T) {
	svc, _, karmaFake := newTestPanel()
	ctx := context.Background()

	_, err := svc.ChooseOp(ctx, superAdminID, OpResetScores)
	require.NoError(t, err)

	outcome, err := svc.ChooseChat(ctx, superAdminID, 100)
	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.Equal(t, []int64{100}, karmaFake.resets)
	assert.Equal(t, StageIdle, svc.Session(superAdminID).Stage)
}

func TestShowGraphUsesCurrentMonth(t *testing.T) {
	svc, _, karmaFake := newTestPanel()
	ctx := context.Background()
	karmaFake.report = []karma.DayActivity{{Day: 1, NetChange: 3}}

	_, err := svc.ChooseOp(ctx, superAdminID, OpShowGraph)
	require.NoError(t, err)

	outcome, err := svc.ChooseChat(ctx, superAdminID, 100)
	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.Equal(t, 2024, outcome.Year)
	assert.Equal(t, time.March, outcome.Month)
	assert.Equal(t, karmaFake.report, outcome.Report)
	assert.Equal(t, StageIdle, svc.Session(superAdminID).Stage)
}

func TestStaleChatButtonIgnored(t *testing.T) {
	svc, _, karmaFake := newTestPanel()

	// Нажатие кнопки выбора чата без активной операции — тихий no-op.
	outcome, err := svc.ChooseChat(context.Background(), superAdminID, 100)
	assert.NoError(t, err)
	assert.Nil(t, outcome)
	assert.Empty(t, karmaFake.resets)
}

func TestTextOutsideDialogNotHandled(t *testing.T) {
	svc, _, _ := newTestPanel()

	outcome, err := svc.SubmitText(context.Background(), superAdminID, "просто текст")
	assert.NoError(t, err)
	assert.Nil(t, outcome)
	assert.False(t, svc.HasSession(superAdminID))
}

package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/framefight/arena/brackets"
	"github.com/framefight/arena/models"
	"github.com/framefight/arena/repositories"
)

// In-memory repository fakes backing the engine tests. They enforce the same
// guards the postgres implementations do: the set-once winner write, the
// unique vote pair and the unique reward marker.

type fakeTxRunner struct{}

func (fakeTxRunner) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeTournamentRepo struct {
	store  map[int]*models.Tournament
	nextID int
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{store: make(map[int]*models.Tournament), nextID: 1}
}

func (r *fakeTournamentRepo) Create(ctx context.Context, t *models.Tournament) error {
	t.ID = r.nextID
	r.nextID++
	for i := range t.Rounds {
		t.Rounds[i].TournamentID = t.ID
	}
	r.store[t.ID] = t
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, ok := r.store[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return t, nil
}

func (r *fakeTournamentRepo) ListByStatus(ctx context.Context, status models.TournamentStatus) ([]*models.Tournament, error) {
	out := make([]*models.Tournament, 0)
	for _, t := range r.store {
		if t.Status == status {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	t, ok := r.store[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (r *fakeTournamentRepo) SetWinner(ctx context.Context, exec repositories.SQLExecutor, id int, winnerThumbnailID int) error {
	t, ok := r.store[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.WinnerThumbnailID = &winnerThumbnailID
	return nil
}

type fakeThumbnailRepo struct {
	store  map[int]*models.Thumbnail
	nextID int
}

func newFakeThumbnailRepo() *fakeThumbnailRepo {
	return &fakeThumbnailRepo{store: make(map[int]*models.Thumbnail), nextID: 1}
}

func (r *fakeThumbnailRepo) Create(ctx context.Context, t *models.Thumbnail) error {
	t.ID = r.nextID
	r.nextID++
	clone := *t
	r.store[t.ID] = &clone
	return nil
}

func (r *fakeThumbnailRepo) GetByID(ctx context.Context, id int) (*models.Thumbnail, error) {
	t, ok := r.store[id]
	if !ok {
		return nil, repositories.ErrThumbnailNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *fakeThumbnailRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Thumbnail, error) {
	out := make([]*models.Thumbnail, 0)
	for _, t := range r.store {
		if t.TournamentID == tournamentID {
			clone := *t
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeThumbnailRepo) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	count := 0
	for _, t := range r.store {
		if t.TournamentID == tournamentID {
			count++
		}
	}
	return count, nil
}

func (r *fakeThumbnailRepo) UpdateRatingAndCounters(ctx context.Context, exec repositories.SQLExecutor, t *models.Thumbnail) error {
	stored, ok := r.store[t.ID]
	if !ok {
		return repositories.ErrThumbnailNotFound
	}
	stored.EloRating = t.EloRating
	stored.BattleCount = t.BattleCount
	stored.WinCount = t.WinCount
	stored.LossCount = t.LossCount
	return nil
}

func (r *fakeThumbnailRepo) UpdateImageKey(ctx context.Context, id int, imageKey *string) error {
	stored, ok := r.store[id]
	if !ok {
		return repositories.ErrThumbnailNotFound
	}
	stored.ImageKey = imageKey
	return nil
}

type fakeBattleRepo struct {
	store  map[int]*models.Battle
	nextID int
}

func newFakeBattleRepo() *fakeBattleRepo {
	return &fakeBattleRepo{store: make(map[int]*models.Battle), nextID: 1}
}

func (r *fakeBattleRepo) CreateBatch(ctx context.Context, exec repositories.SQLExecutor, battles []*models.Battle) error {
	for _, b := range battles {
		b.ID = r.nextID
		r.nextID++
		clone := *b
		r.store[b.ID] = &clone
	}
	return nil
}

func (r *fakeBattleRepo) GetByID(ctx context.Context, id int) (*models.Battle, error) {
	b, ok := r.store[id]
	if !ok {
		return nil, repositories.ErrBattleNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *fakeBattleRepo) ListByRound(ctx context.Context, tournamentID, roundNumber int) ([]*models.Battle, error) {
	out := make([]*models.Battle, 0)
	for _, b := range r.store {
		if b.TournamentID == tournamentID && b.RoundNumber == roundNumber {
			clone := *b
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeBattleRepo) CountByRound(ctx context.Context, tournamentID, roundNumber int) (repositories.RoundProgress, error) {
	var progress repositories.RoundProgress
	for _, b := range r.store {
		if b.TournamentID == tournamentID && b.RoundNumber == roundNumber {
			progress.Total++
			if b.IsTerminal() {
				progress.Terminal++
			}
		}
	}
	return progress, nil
}

func (r *fakeBattleRepo) ListRoundWinnerIDs(ctx context.Context, tournamentID, roundNumber int) ([]int, error) {
	battles, _ := r.ListByRound(ctx, tournamentID, roundNumber)
	out := make([]int, 0)
	for _, b := range battles {
		if id := b.WinnerThumbnailID(); id != nil {
			out = append(out, *id)
		}
	}
	return out, nil
}

func (r *fakeBattleRepo) ListOpponentHistory(ctx context.Context, tournamentID int) (map[int][]int, error) {
	history := make(map[int][]int)
	for _, b := range r.store {
		if b.TournamentID != tournamentID || b.IsBye() {
			continue
		}
		history[b.ThumbnailAID] = append(history[b.ThumbnailAID], *b.ThumbnailBID)
		history[*b.ThumbnailBID] = append(history[*b.ThumbnailBID], b.ThumbnailAID)
	}
	return history, nil
}

func (r *fakeBattleRepo) MaxRoundNumber(ctx context.Context, tournamentID int) (int, error) {
	maxRound := 0
	for _, b := range r.store {
		if b.TournamentID == tournamentID && b.RoundNumber > maxRound {
			maxRound = b.RoundNumber
		}
	}
	return maxRound, nil
}

func (r *fakeBattleRepo) SetWinner(ctx context.Context, exec repositories.SQLExecutor, id int, side models.BattleSide, resolvedAt time.Time) error {
	b, ok := r.store[id]
	if !ok {
		return repositories.ErrBattleNotFound
	}
	if b.WinnerSide != nil {
		return repositories.ErrBattleAlreadyResolved
	}
	b.WinnerSide = &side
	b.ResolvedAt = &resolvedAt
	return nil
}

type fakeVoteRepo struct {
	store  []*models.Vote
	nextID int
}

func newFakeVoteRepo() *fakeVoteRepo {
	return &fakeVoteRepo{nextID: 1}
}

func (r *fakeVoteRepo) Create(ctx context.Context, v *models.Vote) error {
	for _, existing := range r.store {
		if existing.BattleID == v.BattleID && existing.VoterID == v.VoterID {
			return repositories.ErrVoteDuplicate
		}
	}
	v.ID = r.nextID
	r.nextID++
	clone := *v
	r.store = append(r.store, &clone)
	return nil
}

func (r *fakeVoteRepo) ListByBattle(ctx context.Context, battleID int) ([]*models.Vote, error) {
	out := make([]*models.Vote, 0)
	for _, v := range r.store {
		if v.BattleID == battleID {
			clone := *v
			out = append(out, &clone)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	store map[int]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{store: make(map[int]*models.User)}
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	u, ok := r.store[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) GetSystemActor(ctx context.Context) (*models.User, error) {
	ids := make([]int, 0, len(r.store))
	for id := range r.store {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if r.store[id].Role == models.RoleSystem {
			clone := *r.store[id]
			return &clone, nil
		}
	}
	return nil, repositories.ErrSystemActorNotFound
}

func (r *fakeUserRepo) AddArenaScore(ctx context.Context, exec repositories.SQLExecutor, userID, delta int) error {
	u, ok := r.store[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.ArenaScore += delta
	return nil
}

type fakePointsRepo struct {
	store []*models.PointsTransaction
}

func newFakePointsRepo() *fakePointsRepo {
	return &fakePointsRepo{}
}

func (r *fakePointsRepo) Append(ctx context.Context, exec repositories.SQLExecutor, t *models.PointsTransaction) error {
	clone := *t
	r.store = append(r.store, &clone)
	return nil
}

func (r *fakePointsRepo) SumByUser(ctx context.Context, userID int) (int, error) {
	total := 0
	for _, t := range r.store {
		if t.UserID == userID {
			total += t.Points
		}
	}
	return total, nil
}

func (r *fakePointsRepo) ListByUser(ctx context.Context, userID int, limit, offset int) ([]*models.PointsTransaction, error) {
	out := make([]*models.PointsTransaction, 0)
	for _, t := range r.store {
		if t.UserID == userID {
			clone := *t
			out = append(out, &clone)
		}
	}
	if offset >= len(out) {
		return []*models.PointsTransaction{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakePointsRepo) byType(txType models.PointsTransactionType) []*models.PointsTransaction {
	out := make([]*models.PointsTransaction, 0)
	for _, t := range r.store {
		if t.Type == txType {
			out = append(out, t)
		}
	}
	return out
}

type fakeRewardRepo struct {
	store []*models.UserReward
}

func newFakeRewardRepo() *fakeRewardRepo {
	return &fakeRewardRepo{}
}

func (r *fakeRewardRepo) Append(ctx context.Context, exec repositories.SQLExecutor, reward *models.UserReward) error {
	clone := *reward
	r.store = append(r.store, &clone)
	return nil
}

func (r *fakeRewardRepo) ListByUser(ctx context.Context, userID int) ([]*models.UserReward, error) {
	out := make([]*models.UserReward, 0)
	for _, reward := range r.store {
		if reward.UserID == userID {
			clone := *reward
			out = append(out, &clone)
		}
	}
	return out, nil
}

type markerKey struct {
	tournamentID int
	roundNumber  int
	kind         models.RewardMarkerKind
}

type fakeMarkerRepo struct {
	store map[markerKey]bool
}

func newFakeMarkerRepo() *fakeMarkerRepo {
	return &fakeMarkerRepo{store: make(map[markerKey]bool)}
}

func (r *fakeMarkerRepo) InsertMarker(ctx context.Context, exec repositories.SQLExecutor, marker *models.RewardMarker) error {
	key := markerKey{marker.TournamentID, marker.RoundNumber, marker.Kind}
	if r.store[key] {
		return repositories.ErrRewardAlreadyGranted
	}
	r.store[key] = true
	return nil
}

// engineFixture wires the full progression engine over the fakes.
type engineFixture struct {
	tournaments *fakeTournamentRepo
	thumbnails  *fakeThumbnailRepo
	battles     *fakeBattleRepo
	votes       *fakeVoteRepo
	users       *fakeUserRepo
	points      *fakePointsRepo
	rewards     *fakeRewardRepo
	markers     *fakeMarkerRepo

	resolver    *BattleResolver
	distributor *RewardDistributor
	progression *ProgressionService
}

func newEngineFixture() *engineFixture {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tx := fakeTxRunner{}

	f := &engineFixture{
		tournaments: newFakeTournamentRepo(),
		thumbnails:  newFakeThumbnailRepo(),
		battles:     newFakeBattleRepo(),
		votes:       newFakeVoteRepo(),
		users:       newFakeUserRepo(),
		points:      newFakePointsRepo(),
		rewards:     newFakeRewardRepo(),
		markers:     newFakeMarkerRepo(),
	}

	f.resolver = NewBattleResolver(tx, f.battles, f.votes, f.thumbnails, f.users, f.points, logger)
	f.distributor = NewRewardDistributor(tx, f.markers, f.rewards, f.points, f.users, f.thumbnails, logger)
	f.progression = NewProgressionService(
		tx, f.tournaments, f.thumbnails, f.battles, f.users,
		brackets.NewShufflePairingGenerator(), f.resolver, f.distributor, logger,
	)
	return f
}

func (f *engineFixture) setNow(now time.Time) {
	f.resolver.now = func() time.Time { return now }
	f.progression.now = func() time.Time { return now }
}

func (f *engineFixture) addTournament(status models.TournamentStatus, deadline time.Time, rounds []models.Round) *models.Tournament {
	t := &models.Tournament{
		Title:                "weekly clash",
		CreatorID:            1,
		RegistrationDeadline: deadline,
		Status:               status,
		Rounds:               rounds,
	}
	_ = f.tournaments.Create(context.Background(), t)
	return t
}

func (f *engineFixture) addUser(id int, role string) {
	f.users.store[id] = &models.User{ID: id, DisplayName: "user", Role: role}
}

func (f *engineFixture) addThumbnail(tournamentID, creatorID, rating int) *models.Thumbnail {
	t := &models.Thumbnail{
		TournamentID: tournamentID,
		CreatorID:    creatorID,
		Title:        "entry",
		EloRating:    rating,
	}
	_ = f.thumbnails.Create(context.Background(), t)
	return t
}

func (f *engineFixture) addBattle(tournamentID, roundNumber, aID int, bID *int) *models.Battle {
	b := &models.Battle{
		TournamentID: tournamentID,
		RoundNumber:  roundNumber,
		ThumbnailAID: aID,
		ThumbnailBID: bID,
		CreatedByID:  1,
	}
	_ = f.battles.CreateBatch(context.Background(), nil, []*models.Battle{b})
	return b
}

func (f *engineFixture) addVote(battleID, voterID int, side models.BattleSide) {
	_ = f.votes.Create(context.Background(), &models.Vote{
		BattleID: battleID,
		VoterID:  voterID,
		Side:     side,
	})
}

package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"setlist/internal/logging"
	"setlist/internal/selector"
	"setlist/internal/services"
	"setlist/internal/songtext"
	"setlist/internal/sources"
	"setlist/internal/store"
)

// Result summarizes one extraction attempt.
type Result struct {
	VideoID          string
	Source           store.Source
	Songs            []*store.ParsedSong
	Status           store.Status
	CandidatesStored int
}

// Extractor drives the staged extraction pipeline against the store.
type Extractor struct {
	store        *store.Store
	comments     sources.CommentSource
	descriptions sources.DescriptionSource
	keywords     []string
	logger       *slog.Logger
}

// New constructs an extractor. Either source may be nil, in which case its
// stage is skipped the same way an unavailable fetch would be.
func New(st *store.Store, comments sources.CommentSource, descriptions sources.DescriptionSource, keywords []string, logger *slog.Logger) *Extractor {
	return &Extractor{
		store:        st,
		comments:     comments,
		descriptions: descriptions,
		keywords:     keywords,
		logger:       logging.WithComponent(logger, "extract"),
	}
}

// Extract runs the full pipeline for one stream: comments first, description
// second, pending when both come up empty. Fetch failures degrade the stage
// that hit them; store failures abort. Safe to re-run on already extracted or
// pending streams, and never demotes an approved stream.
func (e *Extractor) Extract(ctx context.Context, videoID string) (*Result, error) {
	stream, err := e.store.GetStream(ctx, videoID)
	if err != nil {
		return nil, err
	}

	log := e.logger.With(
		logging.String(logging.FieldRunID, uuid.NewString()),
		logging.String(logging.FieldVideoID, videoID),
	)

	result := &Result{VideoID: videoID}

	fragments, source, err := e.extractFromComments(ctx, log, videoID, result)
	if err != nil {
		return nil, err
	}
	if len(fragments) == 0 {
		fragments, source, err = e.extractFromDescription(ctx, log, videoID, stream.RawDescription)
		if err != nil {
			return nil, err
		}
	}

	if len(fragments) == 0 {
		log.Info("no songs found, parking stream for manual review")
		return e.finish(ctx, result, store.StatusPending)
	}

	songs, err := e.storeSongs(ctx, videoID, source, fragments)
	if err != nil {
		return nil, err
	}
	result.Source = source
	result.Songs = songs
	log.Info("songs extracted",
		logging.String(logging.FieldStage, string(source)),
		logging.Int("songs", len(songs)))
	return e.finish(ctx, result, store.StatusExtracted)
}

// ExtractFromCandidate parses a stored candidate comment that a reviewer has
// chosen, marks it approved, and installs its song list on the stream.
func (e *Extractor) ExtractFromCandidate(ctx context.Context, videoID string, candidateID int64) (*Result, error) {
	candidate, err := e.store.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if candidate.VideoID != videoID {
		return nil, services.Wrap(services.ErrValidation, "extract", "from_candidate",
			fmt.Sprintf("candidate %d belongs to %s, not %s", candidateID, candidate.VideoID, videoID), nil)
	}

	fragments := songtext.ParseBlock(candidate.Text)
	if len(fragments) == 0 {
		return nil, services.Wrap(services.ErrValidation, "extract", "from_candidate",
			fmt.Sprintf("candidate %d contains no song lines", candidateID), nil)
	}

	if _, err := e.store.UpsertStream(ctx, &store.Stream{
		VideoID:          videoID,
		Source:           store.SourceComment,
		RawComment:       candidate.Text,
		CommentAuthor:    candidate.Author,
		CommentAuthorURL: candidate.AuthorURL,
		CommentID:        candidate.CommentCID,
	}); err != nil {
		return nil, err
	}
	if _, err := e.store.SetCandidateStatus(ctx, candidateID, store.CandidateApproved); err != nil {
		return nil, err
	}

	songs, err := e.store.ReplaceSongs(ctx, videoID, fragmentsToSongs(videoID, fragments))
	if err != nil {
		return nil, err
	}

	result := &Result{VideoID: videoID, Source: store.SourceComment, Songs: songs}
	e.logger.Info("songs extracted from reviewed candidate",
		logging.String(logging.FieldVideoID, videoID),
		logging.Int64("candidate_id", candidateID),
		logging.Int("songs", len(songs)))
	return e.finish(ctx, result, store.StatusExtracted)
}

// ExtractAllDiscovered runs Extract over every discovered stream. Per-stream
// failures park that stream as pending and the batch keeps going; the returned
// error covers only the initial listing.
func (e *Extractor) ExtractAllDiscovered(ctx context.Context) ([]Result, error) {
	streams, err := e.store.ListStreams(ctx, store.StatusDiscovered)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(streams))
	for _, stream := range streams {
		result := e.extractSafely(ctx, stream.VideoID)
		results = append(results, *result)
	}
	return results, nil
}

func (e *Extractor) extractSafely(ctx context.Context, videoID string) (result *Result) {
	defer func() {
		if recovered := recover(); recovered != nil {
			e.logger.Error("extraction panicked",
				logging.String(logging.FieldVideoID, videoID),
				logging.String("panic", fmt.Sprintf("%v", recovered)))
			result = e.parkAfterFailure(ctx, videoID)
		}
	}()

	result, err := e.Extract(ctx, videoID)
	if err != nil {
		e.logger.Error("extraction failed",
			logging.String(logging.FieldVideoID, videoID),
			logging.Error(err))
		return e.parkAfterFailure(ctx, videoID)
	}
	return result
}

func (e *Extractor) parkAfterFailure(ctx context.Context, videoID string) *Result {
	result := &Result{VideoID: videoID, Status: store.StatusPending}
	if _, err := e.store.AdvanceStatus(ctx, videoID, store.StatusPending); err != nil {
		e.logger.Warn("could not park failed stream",
			logging.String(logging.FieldVideoID, videoID),
			logging.Error(err))
	}
	if stream, err := e.store.GetStream(ctx, videoID); err == nil {
		result.Status = stream.Status
	}
	return result
}

// extractFromComments fetches the comment thread, records keyword candidates,
// and parses the best timestamp comment. A fetch failure skips the stage.
func (e *Extractor) extractFromComments(ctx context.Context, log *slog.Logger, videoID string, result *Result) ([]songtext.Fragment, store.Source, error) {
	if e.comments == nil {
		return nil, "", nil
	}

	comments, err := e.comments.Comments(ctx, videoID)
	if err != nil {
		if services.StageLocal(err) {
			log.Warn("comment fetch unavailable, falling back to description",
				logging.String(logging.FieldStage, "comment"),
				logging.Error(err))
			return nil, "", nil
		}
		return nil, "", err
	}

	stored, err := e.storeKeywordCandidates(ctx, videoID, comments)
	if err != nil {
		return nil, "", err
	}
	result.CandidatesStored = stored
	if stored > 0 {
		log.Info("keyword candidates stored", logging.Int("candidates", stored))
	}

	best := selector.FindCandidate(comments)
	if best == nil {
		return nil, "", nil
	}

	if _, err := e.store.UpsertStream(ctx, &store.Stream{
		VideoID:          videoID,
		RawComment:       best.Text,
		CommentAuthor:    best.Author,
		CommentAuthorURL: best.AuthorURL,
		CommentID:        best.ID,
	}); err != nil {
		return nil, "", err
	}

	fragments := songtext.ParseBlock(best.Text)
	if len(fragments) == 0 {
		log.Warn("best comment had timestamp shapes but no parseable song lines",
			logging.String(logging.FieldStage, "comment"))
		return nil, "", nil
	}
	return fragments, store.SourceComment, nil
}

// extractFromDescription parses stored description text when the stream
// already carries some; only streams without it hit the fetcher.
func (e *Extractor) extractFromDescription(ctx context.Context, log *slog.Logger, videoID, stored string) ([]songtext.Fragment, store.Source, error) {
	description := stored
	if description == "" {
		if e.descriptions == nil {
			return nil, "", nil
		}

		fetched, err := e.descriptions.Description(ctx, videoID)
		if err != nil {
			if services.StageLocal(err) {
				log.Warn("description fetch unavailable",
					logging.String(logging.FieldStage, "description"),
					logging.Error(err))
				return nil, "", nil
			}
			return nil, "", err
		}
		if fetched == "" {
			return nil, "", nil
		}

		if _, err := e.store.UpsertStream(ctx, &store.Stream{
			VideoID:        videoID,
			RawDescription: fetched,
		}); err != nil {
			return nil, "", err
		}
		description = fetched
	}

	fragments := songtext.ParseBlock(description)
	if len(fragments) == 0 {
		return nil, "", nil
	}
	return fragments, store.SourceDescription, nil
}

func (e *Extractor) storeKeywordCandidates(ctx context.Context, videoID string, comments []selector.Comment) (int, error) {
	matches := selector.FindKeywordComments(comments, e.keywords)
	if len(matches) == 0 {
		return 0, nil
	}
	candidates := make([]store.CandidateComment, 0, len(matches))
	for _, match := range matches {
		candidates = append(candidates, store.CandidateComment{
			VideoID:         videoID,
			CommentCID:      match.Comment.ID,
			Author:          match.Comment.Author,
			AuthorURL:       match.Comment.AuthorURL,
			Text:            match.Comment.Text,
			MatchedKeywords: match.Keywords,
		})
	}
	return e.store.InsertCandidates(ctx, videoID, candidates)
}

func (e *Extractor) storeSongs(ctx context.Context, videoID string, source store.Source, fragments []songtext.Fragment) ([]*store.ParsedSong, error) {
	if _, err := e.store.UpsertStream(ctx, &store.Stream{VideoID: videoID, Source: source}); err != nil {
		return nil, err
	}
	return e.store.ReplaceSongs(ctx, videoID, fragmentsToSongs(videoID, fragments))
}

// finish applies the lenient status transition and reads back the stream so
// the result reflects whatever status actually stuck. Streams the reviewer has
// already approved (or moved further downstream) are left alone; the
// approved-to-extracted edge belongs to manual send-back, not automation.
func (e *Extractor) finish(ctx context.Context, result *Result, to store.Status) (*Result, error) {
	stream, err := e.store.GetStream(ctx, result.VideoID)
	if err != nil {
		return nil, err
	}
	if !curatedStatus(stream.Status) {
		if _, err := e.store.AdvanceStatus(ctx, result.VideoID, to); err != nil {
			return nil, err
		}
		if stream, err = e.store.GetStream(ctx, result.VideoID); err != nil {
			return nil, err
		}
	}
	result.Status = stream.Status
	return result, nil
}

func curatedStatus(status store.Status) bool {
	switch status {
	case store.StatusApproved, store.StatusExported, store.StatusImported:
		return true
	}
	return false
}

func fragmentsToSongs(videoID string, fragments []songtext.Fragment) []store.ParsedSong {
	songs := make([]store.ParsedSong, 0, len(fragments))
	for _, fragment := range fragments {
		song := store.ParsedSong{
			VideoID:        videoID,
			OrderIndex:     fragment.OrderIndex,
			SongName:       fragment.SongName,
			Artist:         fragment.Artist,
			StartTimestamp: fragment.Start,
			EndTimestamp:   fragment.End,
		}
		if fragment.Suspicious {
			song.Note = "start beyond 12h, verify against video length"
		}
		songs = append(songs, song)
	}
	return songs
}

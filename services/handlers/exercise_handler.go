package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cognify-health/cognify_api/dto"
	"github.com/cognify-health/cognify_api/shared"
)

type ExerciseHandler struct {
	exerciseSvc ExerciseServiceInterface
	contentSvc  ContentServiceInterface
}

func NewExerciseHandler(exerciseSvc ExerciseServiceInterface, contentSvc ContentServiceInterface) *ExerciseHandler {
	return &ExerciseHandler{
		exerciseSvc: exerciseSvc,
		contentSvc:  contentSvc,
	}
}

func (h *ExerciseHandler) userID(c *fiber.Ctx) string {
	if v := c.Locals(shared.UserID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func parseBody(c *fiber.Ctx, req dto.Validator) error {
	if err := c.BodyParser(req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return &shared.AppError{
			StatusCode: fiber.StatusBadRequest,
			Message:    "Validation failed",
			Data:       dto.FormatValidationErrors(err),
			Err:        err,
		}
	}
	return nil
}

// @Summary Create Pair Match Session
// @Description Create a memory match session with a shuffled board for the chosen difficulty
// @Tags exercises
// @Accept json
// @Produce json
// @Param request body dto.CreatePairMatchRequest true "Session parameters"
// @Success 200 {object} shared.Response{data=dto.SessionResponse}
// @Router /api/v1/exercises/pair-match [post]
func (h *ExerciseHandler) CreatePairMatch(c *fiber.Ctx) error {
	var req dto.CreatePairMatchRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	session, err := h.exerciseSvc.CreatePairMatch(h.userID(c), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", session)
}

// @Summary Create Sequence Session
// @Description Create a sequence ordering session from a random or named challenge
// @Tags exercises
// @Accept json
// @Produce json
// @Param request body dto.CreateSequenceRequest true "Session parameters"
// @Success 200 {object} shared.Response{data=dto.SessionResponse}
// @Router /api/v1/exercises/sequence [post]
func (h *ExerciseHandler) CreateSequence(c *fiber.Ctx) error {
	var req dto.CreateSequenceRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	session, err := h.exerciseSvc.CreateSequence(h.userID(c), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", session)
}

// @Summary Create Category Naming Session
// @Description Create a category naming session with a random or named category
// @Tags exercises
// @Accept json
// @Produce json
// @Param request body dto.CreateCategoryNamingRequest true "Session parameters"
// @Success 200 {object} shared.Response{data=dto.SessionResponse}
// @Router /api/v1/exercises/category-naming [post]
func (h *ExerciseHandler) CreateCategoryNaming(c *fiber.Ctx) error {
	var req dto.CreateCategoryNamingRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	session, err := h.exerciseSvc.CreateCategoryNaming(h.userID(c), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", session)
}

// @Summary List Categories
// @Description List the active naming categories with their word counts
// @Tags exercises
// @Accept json
// @Produce json
// @Success 200 {object} shared.Response{data=dto.CategoryListResponse}
// @Router /api/v1/exercises/categories [get]
func (h *ExerciseHandler) ListCategories(c *fiber.Ctx) error {
	categories, counts, err := h.contentSvc.ListCategories()
	if err != nil {
		return err
	}

	resp := &dto.CategoryListResponse{Total: len(categories)}
	for _, cat := range categories {
		resp.Categories = append(resp.Categories, dto.CategorySummary{
			ID:        cat.ID,
			Name:      cat.Name,
			WordCount: counts[cat.ID],
		})
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", resp)
}

// @Summary Get Session
// @Description Get the current snapshot of a session
// @Tags exercises
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} shared.Response{data=dto.SessionResponse}
// @Router /api/v1/exercises/{sessionId} [get]
func (h *ExerciseHandler) GetSession(c *fiber.Ctx) error {
	session, err := h.exerciseSvc.GetSession(c.Params("sessionId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", session)
}

// @Summary Start Session
// @Description Start the clock on a session in setup
// @Tags exercises
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} shared.Response{data=dto.SessionResponse}
// @Router /api/v1/exercises/{sessionId}/start [post]
func (h *ExerciseHandler) StartSession(c *fiber.Ctx) error {
	session, err := h.exerciseSvc.StartSession(c.Params("sessionId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", session)
}

// @Summary Pause Session
// @Description Freeze the session clock
// @Tags exercises
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} shared.Response{data=dto.SessionResponse}
// @Router /api/v1/exercises/{sessionId}/pause [post]
func (h *ExerciseHandler) PauseSession(c *fiber.Ctx) error {
	session, err := h.exerciseSvc.PauseSession(c.Params("sessionId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", session)
}

// @Summary Resume Session
// @Description Resume a paused session without counting the pause toward elapsed time
// @Tags exercises
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} shared.Response{data=dto.SessionResponse}
// @Router /api/v1/exercises/{sessionId}/resume [post]
func (h *ExerciseHandler) ResumeSession(c *fiber.Ctx) error {
	session, err := h.exerciseSvc.ResumeSession(c.Params("sessionId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", session)
}

// @Summary Reset Session
// @Description Discard all progress and return the session to setup
// @Tags exercises
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} shared.Response{data=dto.SessionResponse}
// @Router /api/v1/exercises/{sessionId}/reset [post]
func (h *ExerciseHandler) ResetSession(c *fiber.Ctx) error {
	session, err := h.exerciseSvc.ResetSession(c.Params("sessionId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", session)
}

// @Summary Flip Card
// @Description Flip a card face-up in a pair match session; illegal flips come back with accepted=false
// @Tags exercises
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param request body dto.FlipCardRequest true "Card index"
// @Success 200 {object} shared.Response{data=dto.EventOutcomeResponse}
// @Router /api/v1/exercises/{sessionId}/flip [post]
func (h *ExerciseHandler) FlipCard(c *fiber.Ctx) error {
	var req dto.FlipCardRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	outcome, err := h.exerciseSvc.FlipCard(c.Params("sessionId"), *req.CardIndex)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", outcome)
}

// @Summary Swap Steps
// @Description Swap two positions in a sequence session's user order; illegal swaps come back with accepted=false
// @Tags exercises
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param request body dto.SwapStepsRequest true "Positions to swap"
// @Success 200 {object} shared.Response{data=dto.EventOutcomeResponse}
// @Router /api/v1/exercises/{sessionId}/swap [post]
func (h *ExerciseHandler) SwapSteps(c *fiber.Ctx) error {
	var req dto.SwapStepsRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	outcome, err := h.exerciseSvc.SwapSteps(c.Params("sessionId"), *req.From, *req.To)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", outcome)
}

// @Summary Submit Order
// @Description Submit the current ordering of a sequence session for evaluation
// @Tags exercises
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} shared.Response{data=dto.SessionResponse}
// @Router /api/v1/exercises/{sessionId}/submit [post]
func (h *ExerciseHandler) SubmitOrder(c *fiber.Ctx) error {
	session, err := h.exerciseSvc.SubmitOrder(c.Params("sessionId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", session)
}

// @Summary Submit Entry
// @Description Submit one typed word in a category naming session
// @Tags exercises
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param request body dto.SubmitEntryRequest true "Entry text"
// @Success 200 {object} shared.Response{data=dto.EntryOutcomeResponse}
// @Router /api/v1/exercises/{sessionId}/entries [post]
func (h *ExerciseHandler) SubmitEntry(c *fiber.Ctx) error {
	var req dto.SubmitEntryRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	outcome, err := h.exerciseSvc.SubmitEntry(c.Params("sessionId"), req.Entry)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", outcome)
}

// @Summary Get Hint
// @Description Get hint words for a category naming session once unlocked
// @Tags exercises
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} shared.Response{data=dto.HintResponse}
// @Router /api/v1/exercises/{sessionId}/hint [get]
func (h *ExerciseHandler) GetHint(c *fiber.Ctx) error {
	hint, err := h.exerciseSvc.GetHint(c.Params("sessionId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", hint)
}

// @Summary List Attempts
// @Description List the authenticated user's completed attempts, newest first
// @Tags exercises
// @Accept json
// @Produce json
// @Success 200 {object} shared.Response{data=dto.AttemptListResponse}
// @Router /api/v1/exercises/attempts [get]
func (h *ExerciseHandler) ListAttempts(c *fiber.Ctx) error {
	attempts, err := h.exerciseSvc.ListAttempts(h.userID(c))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", attempts)
}

// @Summary Retry Submission
// @Description Retry delivering a failed result submission with the same exercise id
// @Tags exercises
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} shared.Response{data=dto.SessionResponse}
// @Router /api/v1/exercises/{sessionId}/retry-submission [post]
func (h *ExerciseHandler) RetrySubmission(c *fiber.Ctx) error {
	session, err := h.exerciseSvc.RetrySubmission(c.Params("sessionId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", session)
}

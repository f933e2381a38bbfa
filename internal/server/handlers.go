package server

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"clockedin/internal/domain"
	"clockedin/internal/errors"
)

type subjectRequest struct {
	Name       string   `json:"name" validate:"required,max=200"`
	WeeklyGoal *float64 `json:"weeklyGoal" validate:"omitempty,gte=0"`
}

type createSubjectRequest struct {
	Name       string   `json:"name" validate:"required,max=200"`
	WeeklyGoal *float64 `json:"weeklyGoal" validate:"omitempty,gte=0"`
	GoalPreset *float64 `json:"goalPreset" validate:"omitempty,excluded_with=WeeklyGoal"`
}

type createLogRequest struct {
	SubjectID int64    `json:"subjectId" validate:"omitempty,gt=0"`
	Hours     *float64 `json:"hours" validate:"omitempty,gt=0"`
	Minutes   *int     `json:"minutes" validate:"omitempty,gt=0"`
}

type updateLogRequest struct {
	Hours float64 `json:"hours" validate:"required,gt=0"`
}

type sessionRequest struct {
	Token string `json:"token" validate:"required"`
}

// bind parses the JSON body into req and runs its validation tags.
func (s *Server) bind(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return s.validate.Struct(req)
}

func paramID(c *fiber.Ctx) (int64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewInvalidInputError("id", raw, "must be a positive integer")
	}
	return id, nil
}

func formatNumber(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func (s *Server) getDashboard(c *fiber.Ctx) error {
	dashboard, err := s.api.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, dashboard)
}

func (s *Server) listSubjects(c *fiber.Ctx) error {
	includeArchived := c.QueryBool("archived", true)
	return success(c, fiber.StatusOK, s.api.ListSubjects(c.UserContext(), includeArchived))
}

func (s *Server) listSubjectGroups(c *fiber.Ctx) error {
	return success(c, fiber.StatusOK, s.api.GroupSubjects(c.UserContext()))
}

func (s *Server) getPresets(c *fiber.Ctx) error {
	return success(c, fiber.StatusOK, fiber.Map{
		"durations": domain.PresetDurations,
		"goals":     domain.GoalPresets,
	})
}

func (s *Server) createSubject(c *fiber.Ctx) error {
	var req createSubjectRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	var (
		subject *domain.Subject
		err     error
	)
	if req.GoalPreset != nil {
		subject, err = s.api.AddSubjectPreset(c.UserContext(), req.Name, *req.GoalPreset)
	} else {
		subject, err = s.api.AddSubject(c.UserContext(), req.Name, formatNumber(req.WeeklyGoal))
	}
	if err != nil {
		return err
	}
	return success(c, fiber.StatusCreated, subject)
}

func (s *Server) updateSubject(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req subjectRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	subject, err := s.api.EditSubject(c.UserContext(), id, req.Name, formatNumber(req.WeeklyGoal))
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, subject)
}

func (s *Server) deleteSubject(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := s.api.DeleteSubject(c.UserContext(), id); err != nil {
		return err
	}
	return noContent(c)
}

func (s *Server) archiveSubject(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	subject, err := s.api.ArchiveSubject(c.UserContext(), id)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, subject)
}

func (s *Server) unarchiveSubject(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	subject, err := s.api.UnarchiveSubject(c.UserContext(), id)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, subject)
}

func (s *Server) listLogs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	return success(c, fiber.StatusOK, s.api.ListLogs(c.UserContext(), limit))
}

func (s *Server) createLog(c *fiber.Ctx) error {
	var req createLogRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}

	ctx := c.UserContext()
	if req.Hours == nil && req.Minutes == nil {
		return errors.NewValidationError("Enter a valid number of hours", nil)
	}
	if req.Minutes != nil {
		view, err := s.api.LogPreset(ctx, req.SubjectID, *req.Minutes)
		if err != nil {
			return err
		}
		return success(c, fiber.StatusCreated, view)
	}

	view, err := s.api.LogHours(ctx, req.SubjectID, formatNumber(req.Hours))
	if err != nil {
		return err
	}
	return success(c, fiber.StatusCreated, view)
}

func (s *Server) updateLog(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req updateLogRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	view, err := s.api.EditLog(c.UserContext(), id, formatNumber(&req.Hours))
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, view)
}

func (s *Server) deleteLog(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := s.api.DeleteLog(c.UserContext(), id); err != nil {
		return err
	}
	return noContent(c)
}

func (s *Server) getSession(c *fiber.Ctx) error {
	return success(c, fiber.StatusOK, s.api.Status(c.UserContext()))
}

func (s *Server) createSession(c *fiber.Ctx) error {
	var req sessionRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	status, err := s.api.SignIn(c.UserContext(), req.Token)
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, status)
}

func (s *Server) deleteSession(c *fiber.Ctx) error {
	status, err := s.api.SignOut(c.UserContext())
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, status)
}

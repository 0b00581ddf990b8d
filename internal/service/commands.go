package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xiaot623/anketa/internal/domain"
	"github.com/xiaot623/anketa/internal/policy"
)

// Operator command names.
const (
	cmdStart       = "start"
	cmdSetMedia    = "setmedia"
	cmdGetMedia    = "getmedia"
	cmdID          = "id"
	cmdListAdmins  = "list_admins"
	cmdAddAdmin    = "add_admin"
	cmdRemoveAdmin = "remove_admin"
)

// Replies.
const (
	msgAdminsOnly      = "⛔ Faqat adminlar uchun."
	msgListAdminsOnly  = "⛔ Bu buyruq faqat adminlar uchun."
	msgPrimaryOnly     = "⛔ Bu buyruq faqat bosh admin uchun."
	msgSetMediaUsage   = "Foydalanish: /setmedia <key>\nKey-lar: start_video, q9_voice_prompt, q11_video_prompt"
	msgGetMediaUsage   = "Foydalanish: /getmedia <key>"
	msgBadMediaKey     = "Noto'g'ri key. Ruxsat etilgan: start_video, q9_voice_prompt, q11_video_prompt"
	msgAddAdminUsage   = "Foydalanish: /add_admin 123456789"
	msgRemoveUsage     = "Foydalanish: /remove_admin 123456789"
	msgAlreadyAdmin    = "Bu ID allaqachon admin."
	msgNotAdmin        = "Bu ID adminlar ro'yxatida yo'q."
	msgPrimaryRemoval  = "Asosiy adminni olib tashlab bo'lmaydi."
	msgCaptureNoFileID = "⚠️ Файл принят, но не удалось получить file_id."
	msgInternal        = "⚠️ Xatolik yuz berdi, keyinroq urinib ko'ring."
)

type command struct {
	name string
	args []string
}

func parseCommand(text string) command {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 {
		return command{}
	}
	name := strings.TrimPrefix(fields[0], "/")
	// "/cmd@botname" addresses a specific bot.
	name, _, _ = strings.Cut(name, "@")
	return command{name: strings.ToLower(name), args: fields[1:]}
}

func (c command) arg() string {
	if len(c.args) == 0 {
		return ""
	}
	return c.args[0]
}

// handleCommand runs a slash command. It returns false for unknown
// commands, which then reach the questionnaire as text.
func (s *Service) handleCommand(ctx context.Context, ev domain.Event) bool {
	cmd := parseCommand(ev.Text)
	to := ev.From.ID

	switch cmd.name {
	case cmdStart:
		s.machine.Start(ctx, ev.From)

	case cmdID:
		s.reply(ctx, to, fmt.Sprintf("Sizning ID: <code>%s</code>", to), domain.ParseModeHTML)

	case cmdSetMedia:
		if !s.authorize(ctx, cmd.name, to, 0, msgAdminsOnly) {
			return true
		}
		if cmd.arg() == "" {
			s.reply(ctx, to, msgSetMediaUsage, "")
			return true
		}
		key, err := domain.ParseMediaKey(cmd.arg())
		if err != nil {
			s.reply(ctx, to, msgBadMediaKey, "")
			return true
		}
		s.captures.Arm(to, key)
		s.reply(ctx, to, fmt.Sprintf("Yaxshi, endi %s uchun media yuboring (video yoki voice). Bot file_id-ni saqlaydi.", key), "")

	case cmdGetMedia:
		if !s.authorize(ctx, cmd.name, to, 0, msgAdminsOnly) {
			return true
		}
		if cmd.arg() == "" {
			s.reply(ctx, to, msgGetMediaUsage, "")
			return true
		}
		key, err := domain.ParseMediaKey(cmd.arg())
		if err != nil {
			s.reply(ctx, to, msgBadMediaKey, "")
			return true
		}
		ref := s.media.Get(key)
		if ref == "" {
			s.reply(ctx, to, fmt.Sprintf("%s hozircha o'rnatilmagan.", key), "")
			return true
		}
		s.reply(ctx, to, fmt.Sprintf("%s => `%s`", key, ref), domain.ParseModeMarkdown)

	case cmdListAdmins:
		if !s.authorize(ctx, cmd.name, to, 0, msgListAdminsOnly) {
			return true
		}
		ids, err := s.reviewers.ListReviewers(ctx)
		if err != nil {
			s.logger.Error("failed to list reviewers", "error", err)
			s.reply(ctx, to, msgInternal, "")
			return true
		}
		lines := make([]string, 0, len(ids))
		for _, id := range ids {
			lines = append(lines, id.String())
		}
		s.reply(ctx, to, "Adminlar:\n"+strings.Join(lines, "\n"), "")

	case cmdAddAdmin:
		s.addAdmin(ctx, to, cmd)

	case cmdRemoveAdmin:
		s.removeAdmin(ctx, to, cmd)

	default:
		return false
	}
	return true
}

func (s *Service) addAdmin(ctx context.Context, to domain.UserID, cmd command) {
	target, parseErr := domain.ParseUserID(cmd.arg())
	if !s.authorize(ctx, cmd.name, to, target, msgPrimaryOnly) {
		return
	}
	if parseErr != nil {
		s.reply(ctx, to, msgAddAdminUsage, "")
		return
	}

	err := s.reviewers.AddReviewer(ctx, target)
	switch {
	case errors.Is(err, domain.ErrReviewerExists):
		s.reply(ctx, to, msgAlreadyAdmin, "")
	case err != nil:
		s.logger.Error("failed to add reviewer", "reviewer_id", target, "error", err)
		s.reply(ctx, to, msgInternal, "")
	default:
		s.logger.Info("reviewer added", "reviewer_id", target, "by", to)
		s.reply(ctx, to, fmt.Sprintf("✅ Admin qo'shildi: %s", target), "")
	}
}

func (s *Service) removeAdmin(ctx context.Context, to domain.UserID, cmd command) {
	target, parseErr := domain.ParseUserID(cmd.arg())
	decision := s.decide(ctx, cmd.name, to, target)
	if decision == policy.DecisionDeny {
		s.reply(ctx, to, msgPrimaryOnly, "")
		return
	}
	if parseErr != nil {
		s.reply(ctx, to, msgRemoveUsage, "")
		return
	}
	if decision == policy.DecisionProtected {
		s.reply(ctx, to, msgPrimaryRemoval, "")
		return
	}

	err := s.reviewers.RemoveReviewer(ctx, target)
	switch {
	case errors.Is(err, domain.ErrReviewerNotFound):
		s.reply(ctx, to, msgNotAdmin, "")
	case errors.Is(err, domain.ErrPrimaryReviewer):
		s.reply(ctx, to, msgPrimaryRemoval, "")
	case err != nil:
		s.logger.Error("failed to remove reviewer", "reviewer_id", target, "error", err)
		s.reply(ctx, to, msgInternal, "")
	default:
		s.logger.Info("reviewer removed", "reviewer_id", target, "by", to)
		s.reply(ctx, to, fmt.Sprintf("✅ Admin o'chirildi: %s", target), "")
	}
}

// authorize replies with denied and returns false unless the policy allows cmd.
func (s *Service) authorize(ctx context.Context, cmd string, user, target domain.UserID, denied string) bool {
	if s.decide(ctx, cmd, user, target) == policy.DecisionAllow {
		return true
	}
	s.reply(ctx, user, denied, "")
	return false
}

// decide evaluates the policy. Any evaluation failure denies.
func (s *Service) decide(ctx context.Context, cmd string, user, target domain.UserID) policy.Decision {
	reviewers, err := s.reviewers.ListReviewers(ctx)
	if err != nil {
		s.logger.Error("failed to list reviewers", "error", err)
		return policy.DecisionDeny
	}
	decision, err := s.policyEngine.Evaluate(ctx, policy.Request{
		Command:   cmd,
		UserID:    user,
		Reviewers: reviewers,
		TargetID:  target,
	})
	if err != nil {
		s.logger.Error("policy evaluation failed", "command", cmd, "user_id", user, "error", err)
		return policy.DecisionDeny
	}
	if decision != policy.DecisionAllow {
		s.logger.Info("command refused", "command", cmd, "user_id", user, "decision", decision)
	}
	return decision
}

package core

import (
	"context"
	"strings"

	"venturecore/pkg/domain"
)

// RegisterProfile carries the fields collected by the registration flow.
type RegisterProfile struct {
	FirstName          string
	LastName           string
	Email              string
	Phone              string
	Role               Role
	StartupName        string
	StartupDescription string
	StartupIndustry    string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterUser creates a new account. A STARTUP-role registration also
// creates the owned startup, clones the task curriculum, and signs the new
// user in. The whole cascade commits or fails as one transaction.
func (s *Service) RegisterUser(ctx context.Context, profile RegisterProfile) (User, *Startup, Result, error) {
	var (
		user    User
		startup *Startup
		result  Result
	)
	err := s.run(ctx, "register_user", func(ctx context.Context) error {
		role := profile.Role
		if role == "" {
			role = RoleStartup
		}
		res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			email := normalizeEmail(profile.Email)
			if existing, ok := tx.FindUserByEmail(email); ok {
				return ConflictError{Entity: EntityUser, Field: "email", Value: existing.Email}
			}
			created, err := tx.CreateUser(User{
				FirstName: profile.FirstName,
				LastName:  profile.LastName,
				Email:     email,
				Phone:     profile.Phone,
				Role:      role,
			})
			if err != nil {
				return err
			}
			user = created

			var projectID *string
			if role == RoleStartup {
				st, err := tx.CreateStartup(Startup{
					OwnerID:           created.ID,
					Name:              profile.StartupName,
					Description:       profile.StartupDescription,
					Industry:          profile.StartupIndustry,
					Status:            StartupPending,
					ApplicationStatus: ApplicationNeedsCompletion,
				})
				if err != nil {
					return err
				}
				startup = &st
				projectID = &st.ID
				for _, task := range cloneTaskTemplate(created.ID) {
					if _, err := tx.CreateTask(task); err != nil {
						return err
					}
				}
			}

			if _, err := tx.AppendActivity(ActivityLog{UserID: created.ID, Event: "user_registered", Detail: created.Email}); err != nil {
				return err
			}
			tx.SetSession(Session{UserID: created.ID, ProjectID: projectID})
			return nil
		})
		result = res
		return err
	})
	if err != nil {
		return User{}, nil, result, err
	}
	return user, startup, result, nil
}

// RegisterAsPartner upserts the partner profile for a user. The backing User
// row is created with role PARTNER when absent and never duplicated; a second
// profile for the same user is a conflict.
func (s *Service) RegisterAsPartner(ctx context.Context, profile PartnerProfile) (PartnerProfile, Result, error) {
	var (
		created PartnerProfile
		result  Result
	)
	err := s.run(ctx, "register_as_partner", func(ctx context.Context) error {
		res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			email := normalizeEmail(profile.Email)
			userID := profile.UserID
			if userID == "" {
				if existing, ok := tx.FindUserByEmail(email); ok {
					userID = existing.ID
				}
			}
			if userID != "" {
				if _, ok := tx.FindUser(userID); !ok {
					userID = ""
				}
			}
			if userID == "" {
				first, last := splitName(profile.Name)
				user, err := tx.CreateUser(User{
					FirstName: first,
					LastName:  last,
					Email:     email,
					Role:      RolePartner,
				})
				if err != nil {
					return err
				}
				userID = user.ID
			}
			if _, ok := tx.FindPartnerProfileByUser(userID); ok {
				return ConflictError{Entity: EntityPartnerProfile, Field: "user_id", Value: userID}
			}
			profile.UserID = userID
			profile.Email = email
			out, err := tx.CreatePartnerProfile(profile)
			if err != nil {
				return err
			}
			created = out
			_, err = tx.AppendActivity(ActivityLog{UserID: userID, Event: "partner_registered", Detail: out.Name})
			return err
		})
		result = res
		return err
	})
	if err != nil {
		return PartnerProfile{}, result, err
	}
	return created, result, nil
}

// splitName derives first/last name fields from a display name.
func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

// LoginUser signs a user in by case-insensitive email lookup. An unknown
// email reports absent without touching the session.
func (s *Service) LoginUser(ctx context.Context, email string) (User, *Startup, bool, error) {
	var (
		user    User
		startup *Startup
		found   bool
	)
	err := s.run(ctx, "login_user", func(ctx context.Context) error {
		_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			u, ok := tx.FindUserByEmail(normalizeEmail(email))
			if !ok {
				return nil
			}
			found = true
			user = u
			var projectID *string
			if st, ok := tx.FindStartupByOwner(u.ID); ok {
				startup = &st
				projectID = &st.ID
			}
			tx.SetSession(Session{UserID: u.ID, ProjectID: projectID})
			_, err := tx.AppendActivity(ActivityLog{UserID: u.ID, Event: "user_login", Detail: u.Email})
			return err
		})
		return err
	})
	if err != nil || !found {
		return User{}, nil, false, err
	}
	return user, startup, true, nil
}

// Logout clears the session pointer. Logging out with no active session is
// a no-op.
func (s *Service) Logout(ctx context.Context) error {
	return s.run(ctx, "logout", func(ctx context.Context) error {
		_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			tx.ClearSession()
			return nil
		})
		return err
	})
}

// UpdateUser applies a partial update through the mutator. An unknown id is
// a silent no-op.
func (s *Service) UpdateUser(ctx context.Context, id string, mutator func(*User) error) (User, Result, error) {
	var (
		updated User
		result  Result
	)
	err := s.run(ctx, "update_user", func(ctx context.Context) error {
		res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			if _, ok := tx.FindUser(id); !ok {
				return nil
			}
			out, err := tx.UpdateUser(id, mutator)
			if err != nil {
				return err
			}
			updated = out
			return nil
		})
		result = res
		return err
	})
	return updated, result, err
}

// ConvertToPartner performs the lateral exit for a rejected founder: the
// account's role flips to PARTNER and the owned startup's application status
// resets to NEEDS_COMPLETION. The startup record is otherwise untouched.
func (s *Service) ConvertToPartner(ctx context.Context, userID string) (User, Result, error) {
	var (
		updated User
		result  Result
	)
	err := s.run(ctx, "convert_to_partner", func(ctx context.Context) error {
		res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			if _, ok := tx.FindUser(userID); !ok {
				return ErrNotFound{Entity: EntityUser, ID: userID}
			}
			out, err := tx.UpdateUser(userID, func(u *User) error {
				u.Role = RolePartner
				return nil
			})
			if err != nil {
				return err
			}
			updated = out
			if st, ok := tx.FindStartupByOwner(userID); ok {
				if _, err := tx.UpdateStartup(st.ID, func(target *Startup) error {
					target.ApplicationStatus = ApplicationNeedsCompletion
					return nil
				}); err != nil {
					return err
				}
			}
			_, err = tx.AppendActivity(ActivityLog{UserID: userID, Event: "converted_to_partner"})
			return err
		})
		result = res
		return err
	})
	if err != nil {
		return User{}, result, err
	}
	return updated, result, nil
}

// CurrentSession returns the active session pointer, if any.
func (s *Service) CurrentSession() (Session, bool) {
	return s.store.Session()
}

// CurrentUser resolves the active session to its user record.
func (s *Service) CurrentUser() (User, bool) {
	sess, ok := s.store.Session()
	if !ok {
		return User{}, false
	}
	return s.store.GetUser(sess.UserID)
}

// GetUser retrieves a user by id from committed state.
func (s *Service) GetUser(id string) (User, bool) {
	return s.store.GetUser(id)
}

// GetAllUsers lists all users.
func (s *Service) GetAllUsers() []User {
	return s.store.ListUsers()
}

// GetAllPartners lists all partner profiles.
func (s *Service) GetAllPartners() []PartnerProfile {
	return s.store.ListPartnerProfiles()
}

// FindUserByEmail performs a case-insensitive email lookup without mutating
// any state.
func (s *Service) FindUserByEmail(ctx context.Context, email string) (User, bool, error) {
	var (
		user  User
		found bool
	)
	err := s.view(ctx, func(view domain.TransactionView) error {
		user, found = view.FindUserByEmail(normalizeEmail(email))
		return nil
	})
	if err != nil {
		return User{}, false, err
	}
	return user, found, nil
}

package mailer

import "fmt"

// VerificationEmail builds the account verification message carrying a
// human-readable code.
func VerificationEmail(to, name, humanCode string) Email {
	return Email{
		To:      []string{to},
		Subject: "Verify your Taskport account",
		Body:    fmt.Sprintf("Hi %s,\n\nYour verification code is %s. It expires in one day.\n", name, humanCode),
		HTMLBody: fmt.Sprintf(
			"<p>Hi %s,</p><p>Your verification code is <strong>%s</strong>. It expires in one day.</p>",
			name, humanCode),
	}
}

// PasswordResetEmail builds the password reset message linking to the client
// with a machine code.
func PasswordResetEmail(to, clientHost, machineCode string) Email {
	link := fmt.Sprintf("%s/reset-password?code=%s", clientHost, machineCode)
	return Email{
		To:      []string{to},
		Subject: "Reset your Taskport password",
		Body:    fmt.Sprintf("A password reset was requested for your account.\n\nOpen %s to choose a new password. The link expires in one day.\n", link),
		HTMLBody: fmt.Sprintf(
			"<p>A password reset was requested for your account.</p><p><a href=%q>Choose a new password</a>. The link expires in one day.</p>",
			link),
	}
}

// InvitationEmail builds the member invitation message linking to the client
// registration page with a machine code.
func InvitationEmail(to, orgName, clientHost, machineCode string) Email {
	link := fmt.Sprintf("%s/join?code=%s", clientHost, machineCode)
	return Email{
		To:      []string{to},
		Subject: fmt.Sprintf("You have been invited to %s on Taskport", orgName),
		Body:    fmt.Sprintf("You have been invited to join %s.\n\nOpen %s to complete your registration. The link expires in one day.\n", orgName, link),
		HTMLBody: fmt.Sprintf(
			"<p>You have been invited to join <strong>%s</strong>.</p><p><a href=%q>Complete your registration</a>. The link expires in one day.</p>",
			orgName, link),
	}
}

// EmailChangeEmail builds the confirmation message sent to a user's new
// address when they change their email.
func EmailChangeEmail(to, clientHost, machineCode string) Email {
	link := fmt.Sprintf("%s/confirm-email?code=%s", clientHost, machineCode)
	return Email{
		To:      []string{to},
		Subject: "Confirm your new email address",
		Body:    fmt.Sprintf("Open %s to confirm this address for your Taskport account. The link expires in one day.\n", link),
		HTMLBody: fmt.Sprintf(
			"<p><a href=%q>Confirm this address</a> for your Taskport account. The link expires in one day.</p>",
			link),
	}
}

// TwoFactorEmail builds the two-factor login message carrying a
// human-readable code.
func TwoFactorEmail(to, humanCode string) Email {
	return Email{
		To:      []string{to},
		Subject: "Your Taskport sign-in code",
		Body:    fmt.Sprintf("Your sign-in code is %s. It expires in one day.\n", humanCode),
		HTMLBody: fmt.Sprintf(
			"<p>Your sign-in code is <strong>%s</strong>. It expires in one day.</p>",
			humanCode),
	}
}

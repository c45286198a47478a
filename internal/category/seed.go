package category

// SeedCorpus returns the hand-authored example commands per category used to
// bootstrap an untrained classifier. Some short commands ("scp", "sftp")
// appear under more than one category on purpose: the intent behind them is
// genuinely ambiguous without more context.
func SeedCorpus() map[Label][]string {
	return map[Label][]string{
		Reconnaissance: {
			"ls", "pwd", "whoami", "id", "uname", "ps", "netstat", "ifconfig", "cat /etc/passwd",
			"ls -la", "ls -l", "find", "w", "who", "last", "finger", "arp -a", "cat /etc/resolv.conf",
		},
		Persistence: {
			"crontab", "at", "ssh-keygen", "useradd", "chmod +x", "nohup",
			"touch /var/spool/cron", "echo \"* * * * *\"", "chmod 644 .ssh/authorized_keys",
		},
		PrivilegeEscalation: {
			"sudo", "su", "chmod u+s", "find / -perm -4000", "chmod 4755", "pkexec",
			"sudo -l", "sudo -i", "su -", "perl -e", "python -c", "gcc exploit.c",
		},
		LateralMovement: {
			"ssh", "scp", "nc", "rsync", "ssh-copy-id", "sftp",
			"ssh-keyscan", "ssh-agent", "telnet", "rlogin",
		},
		DataExfiltration: {
			"tar", "zip", "curl -O", "wget", "scp", "base64", "gzip", "bzip2",
			"dd if=", "cat file | nc", "rm -rf", "shred", "sftp",
		},
		Miscellaneous: {
			"echo", "cd", "touch", "mkdir", "rm", "grep", "clear", "cat", "more",
			"less", "head", "tail", "mv", "cp", "man", "info", "vi", "nano",
		},
	}
}

// SeedTrainingSet flattens the seed corpus into paired command/label slices
// in deterministic order (sorted by category, then corpus order).
func SeedTrainingSet() ([]string, []Label) {
	corpus := SeedCorpus()
	var commands []string
	var labels []Label
	for _, l := range All() {
		for _, cmd := range corpus[l] {
			commands = append(commands, cmd)
			labels = append(labels, l)
		}
	}
	return commands, labels
}

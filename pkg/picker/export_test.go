package picker

var (
	CleanupScript   = cleanupScript
	InstallScript   = installScript
	DescribeScript  = describeScript
	PickedPredicate = pickedPredicate
)

package shell

const (
	keyIncome  = "+"
	keyExpense = "-"
	keyShow    = "="
	keyHelp    = "?"
	keyQuit    = ":"
)

const banner = "virtuallet, your pocket money ledger"

const infoText = `Commands:
	+  book an income
	-  book an expense
	=  show balance and recent transactions
	?  help
	:  quit`

const helpText = `Virtuallet keeps a pocket-money style ledger.

Every calendar month the configured income is credited automatically, once,
the first time the program runs in that month. Months skipped while the
program was not used are credited on the next start.

Incomes are added to the balance, expenses are subtracted. An expense is
refused when it would take the balance below the negative overdraft limit.

Amounts accept a dot or a comma as decimal separator and are rounded to
two decimals.`

const (
	msgSetupWelcome     = "No ledger found, let's set one up. Press enter to accept the value in brackets."
	msgSetupDescription = "Description of the monthly income"
	msgSetupIncome      = "Monthly income amount"
	msgSetupOverdraft   = "Overdraft allowed"
	msgSetupComplete    = "Setup complete, have fun!"

	msgEnterCommand     = "> "
	msgEnterDescription = "Description (optional): "
	msgEnterAmount      = "Amount: "

	msgIncomeBooked  = "Income booked."
	msgExpenseBooked = "Expense booked."
	msgTooExpensive  = "Refused: this expense would exceed your overdraft."
	msgZeroOrInvalid = "Please enter a number greater than zero."
	msgNegative      = "Please enter the amount without a sign; use + or - to choose income or expense."
	msgKeyOnly       = "Type only + or - and press enter, the amount is asked next."
	msgNonNegative   = "Please enter zero or a positive number."
	msgStorageFailed = "The ledger could not be accessed, nothing was changed. Details are in the log."
	msgFailed        = "Something went wrong, nothing was changed. Details are in the log."
	msgBye           = "Bye!"
)

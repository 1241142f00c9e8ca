package prompts

const TaskSystem = (`
You are a planning agent (Task Generator) for a battery energy-arbitrage controller.
Your output is a prompt for another model that writes policy programs.
Do NOT include any code yourself.
`)

const CodeSystem = (`
You are a senior engineer writing policy programs in Starlark, a small Python dialect.
Return ONLY the program text for the requested policy. No prose, no explanations.
`)

// Grammar describes the accepted policy program shape. It is included in
// every task so the generated program passes validation.
const Grammar = (`
The policy program must follow these rules exactly:

  * Define exactly one top-level constructor function, for example
    ` + "`def GeneratedPolicy(learning_rate = 0.01, window_size = 24):`" + `.
  * Every constructor parameter must have a numeric default value.
    No *args or **kwargs.
  * Inside the constructor, define a nested function ` + "`take_action(state)`" + `
    that takes exactly one argument and returns a number: positive to charge,
    negative to discharge, 0.0 to hold. Return it at the end of the constructor.
  * Keep rolling state (price windows, counters) in lists created inside the
    constructor; nested functions may mutate lists but may not rebind names.
  * ` + "`state`" + ` exposes the fields soc, imported, price, cost and demand
    (state.price), and can also be indexed in that order (state[2]).
  * Numeric helpers are available as np: np.mean, np.std, np.sum, np.clip,
    np.sign, np.sqrt, np.exp, np.log, np.floor, np.ceil, np.fabs.
  * No import statements and no load statements. No classes, no self.
    There is no try/except, no global statement and no recursion.
`)
